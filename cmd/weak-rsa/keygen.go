// Copyright © 2021 Io FinNet Group, Inc.

package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"io"
	"math/big"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	errors2 "github.com/pkg/errors"

	"github.com/iofinnet/weak-rsa/crypto/rsakey"
)

type keygenConfig struct {
	bits        int
	e           int64
	flag        string
	pad         int
	keyOut      string
	privOut     string
	ctOut       string
	encoding    string
	timeout     time.Duration
	concurrency int
}

func parseKeygenFlags(args []string, stderr io.Writer) (*keygenConfig, error) {
	cfg := new(keygenConfig)
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&cfg.bits, "bits", 1024, "modulus length in bits")
	fs.Int64Var(&cfg.e, "e", rsakey.DefaultExponent, "public exponent")
	fs.StringVar(&cfg.flag, "flag", "", "flag to encrypt")
	fs.IntVar(&cfg.pad, "pad", 8, "random bytes placed before the flag")
	fs.StringVar(&cfg.keyOut, "key-out", "", "write the public key as PKIX PEM")
	fs.StringVar(&cfg.privOut, "private-out", "", "write the private key as PKCS#1 PEM")
	fs.StringVar(&cfg.ctOut, "ciphertext-out", "", "write the ciphertext")
	fs.StringVar(&cfg.encoding, "encoding", string(rsakey.EncodingRaw), "ciphertext file encoding: raw, hex or base64")
	fs.DurationVar(&cfg.timeout, "timeout", time.Minute, "give up generating after this long")
	fs.IntVar(&cfg.concurrency, "concurrency", runtime.NumCPU(), "generator workers")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.flag == "" {
		return nil, fmt.Errorf("%w: -flag", errMissingFlag)
	}
	if cfg.keyOut == "" {
		return nil, fmt.Errorf("%w: -key-out", errMissingFlag)
	}
	if cfg.ctOut == "" {
		return nil, fmt.Errorf("%w: -ciphertext-out", errMissingFlag)
	}
	if cfg.pad < 0 {
		return nil, fmt.Errorf("-pad must be >= 0, got %d", cfg.pad)
	}
	return cfg, nil
}

func runKeygen(args []string, stdout, stderr io.Writer) error {
	cfg, err := parseKeygenFlags(args, stderr)
	if err != nil {
		return err
	}
	sk, err := rsakey.GenerateWeakKey(cfg.bits, big.NewInt(cfg.e), cfg.timeout, cfg.concurrency)
	if err != nil {
		return err
	}

	msg, err := paddedMessage(cfg.pad, []byte(cfg.flag))
	if err != nil {
		return err
	}
	c, err := sk.PublicKey.Encrypt(new(big.Int).SetBytes(msg))
	if err != nil {
		return errors2.Wrapf(err, "%d byte message does not fit a %d bit modulus", len(msg), cfg.bits)
	}
	ct, err := rsakey.EncodeCiphertext(c, sk.PublicKey.Size(), rsakey.Encoding(cfg.encoding))
	if err != nil {
		return err
	}
	pubPEM, err := rsakey.MarshalPublicKeyPEM(&sk.PublicKey)
	if err != nil {
		return err
	}

	if err := os.WriteFile(cfg.keyOut, pubPEM, 0o644); err != nil {
		return errors2.Wrapf(err, "writing public key %s", cfg.keyOut)
	}
	if err := os.WriteFile(cfg.ctOut, ct, 0o644); err != nil {
		return errors2.Wrapf(err, "writing ciphertext %s", cfg.ctOut)
	}
	if cfg.privOut != "" {
		if err := writePrivateKey(cfg.privOut, sk); err != nil {
			return err
		}
	}

	table := tablewriter.NewWriter(stdout)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Field", "Value"})
	table.Append([]string{"fingerprint", sk.PublicKey.FingerprintHex()})
	table.Append([]string{"modulus bits", strconv.Itoa(sk.N.BitLen())})
	table.Append([]string{"e", sk.E.String()})
	table.Append([]string{"flag-len", strconv.Itoa(len(cfg.flag))})
	table.Append([]string{"public key", cfg.keyOut})
	table.Append([]string{"ciphertext", cfg.ctOut})
	table.Render()
	return nil
}

// paddedMessage prefixes flag with pad random bytes. The first byte is non-zero so the padding
// survives the integer round trip.
func paddedMessage(pad int, flag []byte) ([]byte, error) {
	msg := make([]byte, pad+len(flag))
	if _, err := io.ReadFull(rand.Reader, msg[:pad]); err != nil {
		return nil, errors2.Wrapf(err, "reading padding")
	}
	if pad > 0 && msg[0] == 0 {
		msg[0] = 1
	}
	copy(msg[pad:], flag)
	return msg, nil
}
