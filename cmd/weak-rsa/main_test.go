// Copyright © 2021 Io FinNet Group, Inc.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iofinnet/weak-rsa/crypto/recovery"
	"github.com/iofinnet/weak-rsa/crypto/rsakey"
	"github.com/iofinnet/weak-rsa/test"
)

const testFlag = "flag{q_is_the_inverse_of_e_mod_p_so_n_falls_apart}"

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)
	return stdout.String(), err
}

func TestRecoverCommand(t *testing.T) {
	for _, key := range []string{"testdata/public.pem", "testdata/public_pkcs1.pem"} {
		out, err := runCLI(t, "recover", "-key", key, "-ciphertext", "testdata/flag.enc", "-flag-len", "50")
		require.NoError(t, err, key)
		assert.Contains(t, out, "flag: "+testFlag+"\n")
		assert.Contains(t, out, "55118")
		assert.Contains(t, out, "27559")
	}
}

func TestRecoverCommandWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	keyOut := filepath.Join(dir, "private.pem")
	reportOut := filepath.Join(dir, "report.cbor")

	_, err := runCLI(t, "recover",
		"-key", "testdata/public.pem",
		"-ciphertext", "testdata/flag.enc",
		"-flag-len", "50",
		"-concurrency", "4",
		"-out", keyOut,
		"-report", reportOut,
		"-v")
	require.NoError(t, err)

	f := test.Fixture1024()
	pemBytes, err := os.ReadFile(keyOut)
	require.NoError(t, err)
	sk, err := rsakey.ParsePrivateKeyPEM(pemBytes)
	require.NoError(t, err)
	assert.NoError(t, sk.Validate())
	assert.Equal(t, 0, sk.D.Cmp(f.D))

	bz, err := os.ReadFile(reportOut)
	require.NoError(t, err)
	var rep recovery.Report
	require.NoError(t, rep.UnmarshalBinary(bz))
	assert.NoError(t, rep.Verify())
	assert.Equal(t, []byte(testFlag), rep.Flag)
	assert.Equal(t, f.Iterations(), rep.Iterations)
}

func TestRecoverCommandWholePlaintext(t *testing.T) {
	out, err := runCLI(t, "recover", "-key", "testdata/public.pem", "-ciphertext", "testdata/flag.enc")
	require.NoError(t, err)
	// the random padding makes the whole plaintext unprintable
	assert.Contains(t, out, "flag: 0x429da9f0d8dc0297")
}

func TestRecoverCommandErrors(t *testing.T) {
	_, err := runCLI(t, "recover", "-key", "testdata/independent.pem", "-ciphertext", "testdata/flag.enc", "-concurrency", "4")
	assert.ErrorIs(t, err, recovery.ErrSearchExhausted)
	assert.Equal(t, recovery.CategorySearchExhausted, recovery.Category(err))

	_, err = runCLI(t, "recover", "-key", "testdata/public.pem", "-ciphertext", "testdata/flag.enc", "-max-iterations", "27558")
	assert.ErrorIs(t, err, recovery.ErrSearchExhausted)

	_, err = runCLI(t, "recover", "-key", "testdata/public.pem", "-ciphertext", "testdata/flag.enc", "-flag-len", "59")
	assert.ErrorIs(t, err, recovery.ErrInvalidFlagLength)

	_, err = runCLI(t, "recover", "-key", "testdata/public.pem", "-ciphertext", "testdata/flag.enc", "-max-iterations", "0")
	assert.ErrorIs(t, err, recovery.ErrInvalidParameters)

	_, err = runCLI(t, "recover", "-key", "testdata/public.pem", "-ciphertext", "testdata/flag.enc", "-encoding", "base32")
	assert.Error(t, err)

	_, err = runCLI(t, "recover", "-key", "testdata/missing.pem", "-ciphertext", "testdata/flag.enc")
	assert.Error(t, err)

	_, err = runCLI(t, "recover", "-ciphertext", "testdata/flag.enc")
	assert.ErrorIs(t, err, errMissingFlag)
	_, err = runCLI(t, "recover", "-key", "testdata/public.pem")
	assert.ErrorIs(t, err, errMissingFlag)
}

func TestKeygenThenRecover(t *testing.T) {
	dir := t.TempDir()
	pubPath := filepath.Join(dir, "public.pem")
	privPath := filepath.Join(dir, "private.pem")
	ctPath := filepath.Join(dir, "flag.hex")
	const flag = "flag{roundtrip}"

	out, err := runCLI(t, "keygen",
		"-bits", "256",
		"-flag", flag,
		"-pad", "4",
		"-key-out", pubPath,
		"-private-out", privPath,
		"-ciphertext-out", ctPath,
		"-encoding", "hex")
	require.NoError(t, err)
	assert.Contains(t, out, "256")

	pub, err := rsakey.LoadPublicKey(pubPath)
	require.NoError(t, err)
	assert.Equal(t, 256, pub.N.BitLen())
	pemBytes, err := os.ReadFile(privPath)
	require.NoError(t, err)
	sk, err := rsakey.ParsePrivateKeyPEM(pemBytes)
	require.NoError(t, err)
	assert.True(t, pub.Equal(&sk.PublicKey))

	out, err = runCLI(t, "recover",
		"-key", pubPath,
		"-ciphertext", ctPath,
		"-encoding", "hex",
		"-flag-len", "15",
		"-concurrency", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "flag: "+flag+"\n")
}

func TestKeygenErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, "keygen", "-key-out", filepath.Join(dir, "k"), "-ciphertext-out", filepath.Join(dir, "c"))
	assert.ErrorIs(t, err, errMissingFlag)

	_, err = runCLI(t, "keygen", "-flag", "x", "-ciphertext-out", filepath.Join(dir, "c"))
	assert.ErrorIs(t, err, errMissingFlag)

	// padding plus flag is far larger than a 64 bit modulus
	_, err = runCLI(t, "keygen", "-bits", "64", "-flag", "flag{this_is_far_too_long_for_the_key}",
		"-key-out", filepath.Join(dir, "k"), "-ciphertext-out", filepath.Join(dir, "c"))
	assert.ErrorIs(t, err, rsakey.ErrMessageOutOfRange)

	_, err = runCLI(t, "keygen", "-flag", "x", "-pad", "-1",
		"-key-out", filepath.Join(dir, "k"), "-ciphertext-out", filepath.Join(dir, "c"))
	assert.Error(t, err)
}

func TestRunCommands(t *testing.T) {
	_, err := runCLI(t)
	assert.ErrorIs(t, err, errMissingCommand)

	_, err = runCLI(t, "factor")
	assert.ErrorIs(t, err, errUnknownCommand)

	out, err := runCLI(t, "help")
	require.NoError(t, err)
	assert.Contains(t, out, "recover")
	assert.Contains(t, out, "keygen")
}

func TestPrintable(t *testing.T) {
	assert.Equal(t, "flag{x}", printable([]byte("flag{x}")))
	assert.Equal(t, "0x00ff", printable([]byte{0x00, 0xff}))
	assert.Equal(t, "0x0102", printable([]byte{0x01, 0x02}))
}
