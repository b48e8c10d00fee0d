package server

import (
	_ "embed"
	"fmt"
	"os"
	"time"
)

//go:embed banner.txt
var bannerText string

// printBanner writes the startup banner with the current date and time.
func (s *Server) printBanner() {
	fmt.Fprintf(os.Stdout, bannerText, time.Now().Format(time.DateTime))
}
