// server/main.go
package main

import "github.com/ViniZap4/carnet-server/cli"

func main() {
	cli.Execute()
}
