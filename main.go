package main

import "github.com/jkarvonen/owncloud-client/cmd"

func main() {
	cmd.Execute()
}
