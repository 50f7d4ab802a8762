package supervisor

import "testing"

import "github.com/stretchr/testify/assert"

func TestEscapeAutomatonPassesThroughOrdinaryBytes(t *testing.T) {
	var e escapeAutomaton
	for _, b := range []byte("hello") {
		toForward, forward, detach := e.feed(b)
		assert.True(t, forward)
		assert.False(t, detach)
		assert.Equal(t, b, toForward)
	}
}

func TestEscapeAutomatonDetach(t *testing.T) {
	var e escapeAutomaton

	_, forward, detach := e.feed(Esc1)
	assert.False(t, forward)
	assert.False(t, detach)

	toForward, forward, detach := e.feed(Esc2)
	assert.False(t, forward)
	assert.True(t, detach)
	assert.Equal(t, byte(0), toForward)
}

func TestEscapeAutomatonLiteralEsc1(t *testing.T) {
	var e escapeAutomaton

	e.feed(Esc1)
	toForward, forward, detach := e.feed(Esc1)
	assert.True(t, forward)
	assert.False(t, detach)
	assert.Equal(t, Esc1, toForward)
}

func TestEscapeAutomatonArmedThenOtherByteDiscardsEsc1(t *testing.T) {
	var e escapeAutomaton

	e.feed(Esc1)
	toForward, forward, detach := e.feed('x')
	assert.True(t, forward)
	assert.False(t, detach)
	assert.Equal(t, byte('x'), toForward, "only the second byte is forwarded; the stored Esc1 is discarded")
}

func TestEscapeAutomatonDisarmsAfterOneByte(t *testing.T) {
	var e escapeAutomaton

	e.feed(Esc1)
	e.feed('x')

	toForward, forward, detach := e.feed(Esc2)
	assert.True(t, forward)
	assert.False(t, detach)
	assert.Equal(t, Esc2, toForward, "automaton must not still be armed after a prior discard")
}
