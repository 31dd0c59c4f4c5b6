package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/delaneyj/orrery/cmd/codegen/templates"
	"github.com/urfave/cli/v3"
)

const (
	genericParamCountKey = "count"
	outputPathKey        = "out"
)

func main() {
	cmd := &cli.Command{
		Name:  "generate",
		Usage: "Generate the fixed-arity derivation constructors",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  genericParamCountKey,
				Usage: "Number of generic parameters to generate",
				Value: 8,
			},
			&cli.StringFlag{
				Name:  outputPathKey,
				Usage: "Where to write the generated file",
				Value: "explicit_gen.go",
			},
		},
		Action: generate,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func generate(ctx context.Context, cmd *cli.Command) error {
	start := time.Now()
	log.Printf("Codegen for orrery started !")
	defer func() {
		log.Printf("Codegen for orrery finished in %v", time.Since(start))
	}()

	genericParamCount := cmd.Uint(genericParamCountKey)
	outputPath := cmd.String(outputPathKey)

	contents := templates.ExplicitGen(int(genericParamCount))
	if err := os.WriteFile(outputPath, []byte(contents), 0644); err != nil {
		return err
	}

	return nil
}
