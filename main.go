package main

import "github.com/ammasidli/storefront/cmd"

func main() {
	cmd.Start()
}
