// Copyright © 2021 Io FinNet Group, Inc.

package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/big"
	"os"
	"strconv"
	"sync/atomic"
	"time"
	"unicode/utf8"

	log "github.com/ipfs/go-log"
	"github.com/olekukonko/tablewriter"
	errors2 "github.com/pkg/errors"

	"github.com/iofinnet/weak-rsa/common"
	int2 "github.com/iofinnet/weak-rsa/common/int"
	"github.com/iofinnet/weak-rsa/crypto/recovery"
	"github.com/iofinnet/weak-rsa/crypto/rsakey"
)

var (
	errMissingCommand = errors.New("missing command")
	errUnknownCommand = errors.New("unknown command")
	errMissingFlag    = errors.New("missing required flag")
)

type recoverConfig struct {
	keyPath, ciphertextPath string
	encoding                string
	flagLen                 int
	maxIterations           int
	concurrency             int
	batchSize               int
	timeout                 time.Duration
	outPath, reportPath     string
	constantTime            bool
	verbose                 bool
}

func parseRecoverFlags(args []string, stderr io.Writer) (*recoverConfig, error) {
	cfg := new(recoverConfig)
	fs := flag.NewFlagSet("recover", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.keyPath, "key", "", "PEM encoded RSA public key (PKIX or PKCS#1)")
	fs.StringVar(&cfg.ciphertextPath, "ciphertext", "", "file holding the ciphertext")
	fs.StringVar(&cfg.encoding, "encoding", string(rsakey.EncodingRaw), "ciphertext file encoding: raw, hex or base64")
	fs.IntVar(&cfg.flagLen, "flag-len", 0, "number of trailing plaintext bytes forming the flag, 0 prints the whole plaintext")
	fs.IntVar(&cfg.maxIterations, "max-iterations", recovery.DefaultMaxIterations, "number of even k values to try")
	fs.IntVar(&cfg.concurrency, "concurrency", recovery.DefaultConcurrency, "search workers")
	fs.IntVar(&cfg.batchSize, "batch-size", recovery.DefaultBatchSize, "candidates per worker and round")
	fs.DurationVar(&cfg.timeout, "timeout", 0, "abort the search after this long, 0 for no limit")
	fs.StringVar(&cfg.outPath, "out", "", "write the recovered private key as PKCS#1 PEM")
	fs.StringVar(&cfg.reportPath, "report", "", "write a CBOR recovery report")
	fs.BoolVar(&cfg.constantTime, "constant-time", false, "decrypt with constant-time modular exponentiation")
	fs.BoolVar(&cfg.verbose, "v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.keyPath == "" {
		return nil, fmt.Errorf("%w: -key", errMissingFlag)
	}
	if cfg.ciphertextPath == "" {
		return nil, fmt.Errorf("%w: -ciphertext", errMissingFlag)
	}
	return cfg, nil
}

func runRecover(args []string, stdout, stderr io.Writer) error {
	cfg, err := parseRecoverFlags(args, stderr)
	if err != nil {
		return err
	}
	if cfg.verbose {
		if err := log.SetLogLevel(common.LoggerName, "debug"); err != nil {
			return err
		}
	}
	if cfg.constantTime {
		int2.EnableConstantTimeArithmetic()
		defer int2.DisableConstantTimeArithmetic()
	}

	pub, err := rsakey.LoadPublicKey(cfg.keyPath)
	if err != nil {
		return err
	}
	c, err := rsakey.LoadCiphertext(cfg.ciphertextPath, rsakey.Encoding(cfg.encoding))
	if err != nil {
		return err
	}
	common.Logger.Debugf("loaded key %s (%d bits), ciphertext: %s",
		pub.FingerprintHex(), pub.N.BitLen(), common.FormatBigInt(c))

	var tried int64
	params, err := recovery.NewParameters(
		recovery.WithMaxIterations(cfg.maxIterations),
		recovery.WithConcurrency(cfg.concurrency),
		recovery.WithBatchSize(cfg.batchSize),
		recovery.WithTimeout(cfg.timeout),
		recovery.WithCandidateHook(func(*big.Int) { atomic.AddInt64(&tried, 1) }),
	)
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := recovery.Recover(context.Background(), pub, c, params)
	if err != nil {
		return errors2.Wrapf(err, "after %d candidates", atomic.LoadInt64(&tried))
	}
	elapsed := time.Since(start)

	flagBytes, err := res.Flag(cfg.flagLen)
	if err != nil {
		return err
	}
	if cfg.outPath != "" {
		if err := writePrivateKey(cfg.outPath, res.PrivateKey()); err != nil {
			return err
		}
	}
	if cfg.reportPath != "" {
		if err := writeReport(cfg.reportPath, res, cfg.flagLen); err != nil {
			return err
		}
	}

	table := tablewriter.NewWriter(stdout)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Field", "Value"})
	table.AppendBulk([][]string{
		{"fingerprint", pub.FingerprintHex()},
		{"modulus bits", strconv.Itoa(pub.N.BitLen())},
		{"e", pub.E.String()},
		{"k", res.Secret.K.String()},
		{"iterations", strconv.Itoa(res.Secret.Iterations)},
		{"candidates tested", strconv.FormatInt(atomic.LoadInt64(&tried), 10)},
		{"p", common.FormatBigInt(res.Secret.P)},
		{"q", common.FormatBigInt(res.Secret.Q)},
		{"d", common.FormatBigInt(res.Secret.D)},
		{"plaintext bytes", strconv.Itoa(len(res.PlaintextBytes()))},
		{"elapsed", elapsed.Round(time.Millisecond).String()},
	})
	table.Render()

	fmt.Fprintf(stdout, "flag: %s\n", printable(flagBytes))
	return nil
}

// printable returns b as text when it is valid UTF-8, hex otherwise.
func printable(b []byte) string {
	if utf8.Valid(b) {
		for _, r := range string(b) {
			if r < 0x20 && r != '\n' && r != '\t' {
				return "0x" + hex.EncodeToString(b)
			}
		}
		return string(b)
	}
	return "0x" + hex.EncodeToString(b)
}

func writePrivateKey(path string, sk *rsakey.PrivateKey) error {
	bz, err := rsakey.MarshalPrivateKeyPEM(sk)
	if err != nil {
		return err
	}
	return errors2.Wrapf(os.WriteFile(path, bz, 0o600), "writing private key %s", path)
}

func writeReport(path string, res *recovery.Result, flagLen int) error {
	rep, err := res.Report(flagLen)
	if err != nil {
		return err
	}
	bz, err := rep.MarshalBinary()
	if err != nil {
		return errors2.Wrapf(err, "encoding report")
	}
	return errors2.Wrapf(os.WriteFile(path, bz, 0o644), "writing report %s", path)
}
