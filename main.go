// Copyright © 2024 The GHLS authors

package main

import "github.com/luthersystems/ghls/cmd"

func main() {
	cmd.Execute()
}
