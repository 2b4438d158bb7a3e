package main

import "github.com/frahmantamala/admin-access/cmd"

func main() {
	cmd.Execute()
}
