package main

import "github.com/liamg/bannerscan/cmd"

func main() {
	cmd.Execute()
}
