package main

import "github.com/frahmantamala/tbcpay/cmd"

func main() {
	cmd.Execute()
}
