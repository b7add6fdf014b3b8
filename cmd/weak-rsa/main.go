// Copyright © 2021 Io FinNet Group, Inc.

// Command weak-rsa recovers plaintexts encrypted to RSA keys whose second prime was chosen as
// q = e^-1 mod p, and generates such keys for testing.
//
//	weak-rsa recover -key public.pem -ciphertext flag.enc -flag-len 50
//	weak-rsa keygen -bits 1024 -flag 'flag{...}' -key-out public.pem -ciphertext-out flag.enc
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/iofinnet/weak-rsa/crypto/recovery"
)

const usage = `usage: weak-rsa <command> [flags]

commands:
  recover   factor a weak public key and decrypt a ciphertext
  keygen    generate a weak key and encrypt a flag with it

run "weak-rsa <command> -h" for the flags of a command
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "weak-rsa: %v\n", err)
		if cat := recovery.Category(err); cat != recovery.CategoryUnknown {
			fmt.Fprintf(os.Stderr, "error category: %s\n", cat)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errMissingCommand
	}
	switch args[0] {
	case "recover":
		return runRecover(args[1:], stdout, stderr)
	case "keygen":
		return runKeygen(args[1:], stdout, stderr)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("%w: %q", errUnknownCommand, args[0])
	}
}
