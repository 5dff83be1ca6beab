/*
Copyright © 2026 Paulo Suderio
*/
package main

import "github.com/suderio/draconic-arena/cmd"

func main() {
	cmd.Execute()
}
