// Command schemagen writes the configuration JSON schema, for publishing
// next to the default config.yaml.
package main

import (
	"flag"
	"log"
	"slices"

	"github.com/macropower/pasteflow/api"
	"github.com/macropower/pasteflow/api/v1beta1/configs"
)

var outFile = flag.String("o", "configs.v1beta1.json", "Output file for the generated schema")

func main() {
	flag.Parse()

	err := api.WriteFile(*outFile, append(slices.Clone(configs.SchemaJSON), '\n'))
	if err != nil {
		log.Fatalf("write schema file: %v", err)
	}
}
