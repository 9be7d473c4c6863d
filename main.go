/*
Copyright © 2025 Zakaria El Omari
*/
package main

import "github.com/zikoelomari/guardrail/cmd"

func main() {
	cmd.Execute()
}
