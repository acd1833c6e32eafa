// Command docenc is the CLI surface over the document-encryption core:
// two verbs, encrypt and decrypt, each a thin collaborator that reads
// input bytes, calls into internal/pipeline, and writes the result back
// out. No cryptographic logic lives here.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/redeaux-corp/docenc/internal/docerr"
	"github.com/redeaux-corp/docenc/internal/kdf"
	"github.com/redeaux-corp/docenc/internal/keybundle"
	"github.com/redeaux-corp/docenc/internal/pipeline"
	"github.com/redeaux-corp/docenc/internal/validate"
)

// Exit codes: 0 success, 1 handled error, 130 user interrupt.
const (
	exitOK        = 0
	exitError     = 1
	exitInterrupt = 130
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	interrupted := make(chan os.Signal, 1)
	signal.Notify(interrupted, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupted
		fmt.Fprintln(os.Stderr, "interrupted")
		os.Exit(exitInterrupt)
	}()

	if len(args) == 0 {
		printHelp()
		return exitError
	}

	switch args[0] {
	case "encrypt":
		return runEncrypt(args[1:])
	case "decrypt":
		return runDecrypt(args[1:])
	case "-h", "--help", "help":
		printHelp()
		return exitOK
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		printHelp()
		return exitError
	}
}

func runEncrypt(args []string) int {
	fs := flag.NewFlagSet("encrypt", flag.ContinueOnError)
	output := fs.String("output", "", "output artifact path (default: <input>.encrypted)")
	password := fs.String("password", "", "passphrase (default: auto-generated)")
	if err := fs.Parse(args); err != nil {
		return exitError
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: docenc encrypt <input> [--output o] [--password p]")
		return exitError
	}
	input := fs.Arg(0)

	plaintext, err := os.ReadFile(input)
	if err != nil {
		return fail(docerr.Wrap(docerr.IOError, "reading input file", err))
	}
	if err := validate.PlaintextSize(plaintext); err != nil {
		return fail(err)
	}

	filename := filepath.Base(input)
	tag, err := validate.Filename(filename)
	if err != nil {
		return fail(err)
	}

	passphrase := *password
	if passphrase == "" {
		passphrase, err = validate.AutoPassphrase()
		if err != nil {
			return fail(err)
		}
		fmt.Printf("generated passphrase: %s\n", passphrase)
	} else if err := validate.Passphrase(passphrase); err != nil {
		return fail(err)
	}

	bundle, err := pipeline.NewBundle(passphrase, kdf.DefaultIterations)
	if err != nil {
		return fail(err)
	}

	artifact, err := pipeline.Encrypt(pipeline.EncryptInput{
		Plaintext: plaintext,
		FileType:  tag,
		Filename:  filename,
	}, bundle)
	if err != nil {
		return fail(err)
	}

	outPath := *output
	if outPath == "" {
		outPath = input + ".encrypted"
	}
	if err := os.WriteFile(outPath, artifact, 0o600); err != nil {
		return fail(docerr.Wrap(docerr.IOError, "writing artifact", err))
	}

	keyPath := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".key"
	bundleBytes, err := keybundle.Save(bundle, passphrase)
	if err != nil {
		return fail(err)
	}
	if err := os.WriteFile(keyPath, bundleBytes, 0o600); err != nil {
		return fail(docerr.Wrap(docerr.IOError, "writing key bundle", err))
	}

	fmt.Printf("encrypted %s -> %s (key: %s)\n", input, outPath, keyPath)
	return exitOK
}

func runDecrypt(args []string) int {
	fs := flag.NewFlagSet("decrypt", flag.ContinueOnError)
	output := fs.String("output", "", "output path (default: <input>.decrypted)")
	keyPath := fs.String("key", "", "key bundle path (required)")
	password := fs.String("password", "", "passphrase for a protected key bundle")
	if err := fs.Parse(args); err != nil {
		return exitError
	}
	if fs.NArg() != 1 || *keyPath == "" {
		fmt.Fprintln(os.Stderr, "usage: docenc decrypt <input> --key k [--output o] [--password p]")
		return exitError
	}
	input := fs.Arg(0)

	artifact, err := os.ReadFile(input)
	if err != nil {
		return fail(docerr.Wrap(docerr.IOError, "reading artifact", err))
	}
	keyBytes, err := os.ReadFile(*keyPath)
	if err != nil {
		return fail(docerr.Wrap(docerr.IOError, "reading key bundle", err))
	}

	bundle, err := keybundle.Load(keyBytes, *password)
	if err != nil {
		return fail(err)
	}

	result, err := pipeline.Decrypt(artifact, bundle)
	if err != nil {
		return fail(err)
	}

	outPath := *output
	if outPath == "" {
		outPath = input + ".decrypted"
	}
	if err := os.WriteFile(outPath, result.Plaintext, 0o600); err != nil {
		return fail(docerr.Wrap(docerr.IOError, "writing decrypted output", err))
	}

	fmt.Printf("decrypted %s -> %s (original name: %s)\n", input, outPath, result.Filename)
	return exitOK
}

func fail(err error) int {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	return exitError
}

func printHelp() {
	fmt.Println(`docenc - document encryption container tool

Usage:
  docenc encrypt <input> [--output o] [--password p]
  docenc decrypt <input> --key k [--output o] [--password p]

If --password is omitted on encrypt, a passphrase is auto-generated and
printed once; it is not recoverable afterward.`)
}
