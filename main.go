package main

import "github.com/ValentinKolb/hzwire/cmd"

func main() {
	cmd.Execute()
}
