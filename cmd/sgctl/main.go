// Command sgctl maneja el panel de S&G desde la terminal: lista, guarda, borra
// y exporta registros con el mismo controlador de vista que usa el navegador.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
