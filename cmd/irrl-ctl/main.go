// Command irrl-ctl is the ledger operator's local tool: key management
// over keys.KeyStore and canonical-id helpers over idcodec, kept
// separate from cmd/irrl-server so operators never need the server
// running to mint or inspect keys.
package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/crasofuentes-hub/irrl/idcodec"
	"github.com/crasofuentes-hub/irrl/keys"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "cid":
		return cmdCID(args[1:], out, errOut)
	case "canonicalize":
		return cmdCanonicalize(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "irrl-ctl: ledger operator tool")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  irrl-ctl key init --name <name> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  irrl-ctl key derive --from <name> --role <role> [--force]")
	fmt.Fprintln(w, "  irrl-ctl key list")
	fmt.Fprintln(w, "  irrl-ctl key export --name <name> [--role <role>]")
	fmt.Fprintln(w, "  irrl-ctl cid <file>")
	fmt.Fprintln(w, "  irrl-ctl canonicalize <file.json>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - keys are stored under ~/.irrl/keys/<name> (root.key, roles/<role>.key)")
	fmt.Fprintln(w, "  - --seed-hex must be 32 bytes (64 hex chars) ed25519 seed")
	fmt.Fprintln(w, "  - cid prints the hex sha256 of the file's raw bytes (no canonicalization,")
	fmt.Fprintln(w, "    no cid_ prefix); canonicalize prints the idcodec canonical JSON")
}

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printKeyUsage(errOut)
		return 2
	}
	switch args[0] {
	case "init":
		return cmdKeyInit(args[1:], out, errOut)
	case "derive":
		return cmdKeyDerive(args[1:], out, errOut)
	case "list":
		return cmdKeyList(args[1:], out, errOut)
	case "export":
		return cmdKeyExport(args[1:], out, errOut)
	case "help", "-h", "--help":
		printKeyUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown key subcommand: %s\n\n", args[0])
		printKeyUsage(errOut)
		return 2
	}
}

func printKeyUsage(w io.Writer) {
	fmt.Fprintln(w, "irrl-ctl key: local Ed25519 key management")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  irrl-ctl key init --name <name> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  irrl-ctl key derive --from <name> --role <role> [--force]")
	fmt.Fprintln(w, "  irrl-ctl key list")
	fmt.Fprintln(w, "  irrl-ctl key export --name <name> [--role <role>]")
}

func openStore(errOut io.Writer) (*keys.KeyStore, bool) {
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "key store: %v\n", err)
		return nil, false
	}
	return ks, true
}

func cmdKeyInit(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key init", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name, seedHex string
	var force bool
	fs.StringVar(&name, "name", "", "Key name (directory under ~/.irrl/keys)")
	fs.StringVar(&seedHex, "seed-hex", "", "Optional ed25519 seed as 64 hex chars (for reproducible demos)")
	fs.BoolVar(&force, "force", false, "Overwrite existing key files")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}

	var seed []byte
	if seedHex != "" {
		var derr error
		seed, derr = keys.ParseSeedHex(seedHex)
		if derr != nil {
			fmt.Fprintf(errOut, "invalid --seed-hex: %v\n", derr)
			return 2
		}
	} else {
		seed = make([]byte, ed25519.SeedSize)
		if _, err := rand.Read(seed); err != nil {
			fmt.Fprintf(errOut, "rand: %v\n", err)
			return 1
		}
	}

	ks, ok := openStore(errOut)
	if !ok {
		return 1
	}
	pub, path, err := ks.InitializeRootKey(name, seed, force)
	if err != nil {
		fmt.Fprintf(errOut, "init key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created root key %q\n", name)
	fmt.Fprintf(out, "Stored at: %s\n", path)
	fmt.Fprint(out, pub)
	return 0
}

func cmdKeyDerive(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key derive", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var from, role string
	var force bool
	fs.StringVar(&from, "from", "", "Root key name")
	fs.StringVar(&role, "role", "", "Role identifier (e.g. attester, resolver-operator)")
	fs.BoolVar(&force, "force", false, "Overwrite existing key files")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if from == "" {
		fmt.Fprintln(errOut, "missing --from")
		return 2
	}
	if role == "" {
		fmt.Fprintln(errOut, "missing --role")
		return 2
	}

	ks, ok := openStore(errOut)
	if !ok {
		return 1
	}
	pub, path, err := ks.DeriveKeyFromRole(from, role, force)
	if err != nil {
		fmt.Fprintf(errOut, "derive key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created role key %q/%s\n", from, role)
	fmt.Fprintf(out, "Stored at: %s\n", path)
	fmt.Fprint(out, pub)
	return 0
}

func cmdKeyExport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key export", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name, role string
	fs.StringVar(&name, "name", "", "Key name")
	fs.StringVar(&role, "role", "", "Optional role (if set, exports derived role key)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}

	ks, ok := openStore(errOut)
	if !ok {
		return 1
	}
	pub, err := ks.ExportKey(name, role)
	if err != nil {
		fmt.Fprintf(errOut, "export key: %v\n", err)
		return 1
	}
	fmt.Fprint(out, pub)
	return 0
}

func cmdKeyList(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key list", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ks, ok := openStore(errOut)
	if !ok {
		return 1
	}
	entries, err := ks.ListKeys()
	if err != nil {
		fmt.Fprintf(errOut, "list keys: %v\n", err)
		return 1
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s\n", e.Identifier)
		for _, role := range e.Permissions {
			fmt.Fprintf(out, "  - %s\n", role)
		}
	}
	return 0
}

func cmdCID(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("cid", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: irrl-ctl cid <file>")
		return 2
	}
	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read file: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, idcodec.SHA256Hex(b))
	return 0
}

func cmdCanonicalize(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("canonicalize", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: irrl-ctl canonicalize <file.json>")
		return 2
	}
	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read file: %v\n", err)
		return 1
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		fmt.Fprintf(errOut, "invalid JSON: %v\n", err)
		return 2
	}
	canon, err := idcodec.CanonicalBytes(v)
	if err != nil {
		fmt.Fprintf(errOut, "canonicalize: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, string(canon))
	return 0
}
