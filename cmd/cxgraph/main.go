package main

import "github.com/mvp-joe/cxgraph/internal/cli"

func main() {
	cli.Execute()
}
