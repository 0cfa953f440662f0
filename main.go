package main

import "github.com/joepeeples/sdlc-gitops-sample-stack/cmd"

func main() {
	cmd.Execute()
}
