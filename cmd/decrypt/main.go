// Operator CLI for opening payload values sealed by the loghose ingress.
package main

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/loghose/loghose/pkg/seal"
)

// CLI defines the command-line interface structure parsed by Kong.
type CLI struct {
	Key    string `short:"k" env:"SEAL_KEY" required:"" help:"Seal key (16 bytes)"`
	Sealed string `arg:"" help:"Sealed value on the format base64(data):base64(mac)"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("loghose-decrypt"),
		kong.Description("Open and verify a payload value sealed by the loghose ingress."),
	)

	plaintext, err := seal.Open(cli.Sealed, []byte(cli.Key))
	kctx.FatalIfErrorf(err)

	fmt.Println(string(plaintext))
}
