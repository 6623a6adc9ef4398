package main

import "github.com/dbsmedya/gomutate/cmd/gomutate/cmd"

func main() {
	cmd.Execute()
}
