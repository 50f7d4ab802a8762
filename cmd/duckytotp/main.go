// duckytotp is a bundled demonstration child program for duckymux: it
// reads a list of TOTP/HOTP keys from totp.json (writing out an example
// file on first run) and redraws their current codes once a second.
// Ported from original_source/apps/DuckyTOTP.py's curses loop, using
// github.com/fatih/color in place of colorama and raw ANSI cursor moves
// in place of curses, matching the approach internal/tui/render.go takes
// for the main dashboard.
package main

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base32"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

const configPath = "totp.json"

type keyConfig struct {
	Name     string `json:"name"`
	Secret   string `json:"secret"`
	TimeStep int    `json:"time_step"`
	Digits   int    `json:"digits"`
	Digest   string `json:"digest"`
}

type totpConfig struct {
	Keys []keyConfig `json:"keys"`
}

var exampleConfig = totpConfig{Keys: []keyConfig{
	{Name: "example key 1", Secret: "JBSWY3DPEHPK3PXP", TimeStep: 30, Digits: 6, Digest: "sha1"},
	{Name: "very fast key", Secret: "JBSWY3DPEHPK3PXW", TimeStep: 1, Digits: 6, Digest: "sha1"},
	{Name: "example 10 digit key", Secret: "JBSWY3DPEHPK3PWX", TimeStep: 30, Digits: 10, Digest: "sha1"},
	{Name: "example sha256 key", Secret: "JBSWY3DPEHPK3PXQ", TimeStep: 30, Digits: 6, Digest: "sha256"},
	{Name: "fast key", Secret: "JBSWY3DPEHPK3PXQ", TimeStep: 5, Digits: 6, Digest: "sha256"},
}}

func main() {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "duckytotp:", err)
		os.Exit(1)
	}

	header := color.New(color.ReverseVideo)
	bold := color.New(color.Bold)

	for {
		fmt.Print("\x1b[H\x1b[2J")
		fmt.Println(header.Sprint(padTrunc("Ducky TOTP -  ^C to exit", 80)))
		fmt.Println()
		for _, k := range cfg.Keys {
			code, err := totp(k)
			if err != nil {
				fmt.Printf("%s: error: %v\n", k.Name, err)
				continue
			}
			bold.Print(k.Name)
			fmt.Println(": " + code)
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// loadConfig reads totp.json, writing out exampleConfig if the file does
// not exist yet (original_source's first-run behavior).
func loadConfig(path string) (totpConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return totpConfig{}, err
		}
		out, merr := json.MarshalIndent(exampleConfig, "", "    ")
		if merr != nil {
			return totpConfig{}, merr
		}
		if werr := os.WriteFile(path, out, 0644); werr != nil {
			return totpConfig{}, werr
		}
		return exampleConfig, nil
	}

	var cfg totpConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return totpConfig{}, err
	}
	return cfg, nil
}

// hotp computes an RFC 4226 HOTP code for the given base32 secret and
// counter, using digest to pick the HMAC hash (sha1 or sha256).
func hotp(secret string, counter uint64, digits int, digest string) (string, error) {
	padded := strings.ToUpper(secret)
	if m := len(padded) % 8; m != 0 {
		padded += strings.Repeat("=", 8-m)
	}
	key, err := base32.StdEncoding.DecodeString(padded)
	if err != nil {
		return "", err
	}

	var h func() hash.Hash
	switch digest {
	case "", "sha1":
		h = sha1.New
	case "sha256":
		h = sha256.New
	default:
		return "", fmt.Errorf("unsupported digest %q", digest)
	}

	var counterBytes [8]byte
	binary.BigEndian.PutUint64(counterBytes[:], counter)

	mac := hmac.New(h, key)
	mac.Write(counterBytes[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	binCode := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	code := fmt.Sprintf("%d", binCode)
	if len(code) > digits {
		code = code[len(code)-digits:]
	}
	for len(code) < digits {
		code = "0" + code
	}
	return code, nil
}

// totp computes the current TOTP code for k, applying the defaults
// original_source used when a field is absent (30s step, 6 digits, sha1).
func totp(k keyConfig) (string, error) {
	step := k.TimeStep
	if step <= 0 {
		step = 30
	}
	digits := k.Digits
	if digits <= 0 {
		digits = 6
	}
	counter := uint64(time.Now().Unix()) / uint64(step)
	return hotp(k.Secret, counter, digits, k.Digest)
}

func padTrunc(s string, width int) string {
	if len(s) > width {
		return s[:width]
	}
	for len(s) < width {
		s += " "
	}
	return s
}
