// SPDX-License-Identifier: MPL-2.0

// Command skillpack packages skill bundles into distributable archives.
package main

import cmd "skillpack-cli/cmd/skillpack"

func main() {
	cmd.Execute()
}
