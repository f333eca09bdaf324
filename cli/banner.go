package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

var printedBanner bool

// PrintBanner prints the startup banner once. TOYSHOP_NO_BANNER=1 disables it.
func PrintBanner(port int) {
	if printedBanner {
		return
	}
	if strings.TrimSpace(os.Getenv("TOYSHOP_NO_BANNER")) == "1" {
		return
	}

	blue := color.New(color.FgCyan, color.Bold)
	tip := color.New(color.FgHiBlack)
	title := color.New(color.FgWhite, color.Bold)

	banner := []string{
		"████████╗ ██████╗ ██╗   ██╗███████╗██╗  ██╗ ██████╗ ██████╗ ",
		"╚══██╔══╝██╔═══██╗╚██╗ ██╔╝██╔════╝██║  ██║██╔═══██╗██╔══██╗",
		"   ██║   ██║   ██║ ╚████╔╝ ███████╗███████║██║   ██║██████╔╝",
		"   ██║   ██║   ██║  ╚██╔╝  ╚════██║██╔══██║██║   ██║██╔═══╝ ",
		"   ██║   ╚██████╔╝   ██║   ███████║██║  ██║╚██████╔╝██║     ",
		"   ╚═╝    ╚═════╝    ╚═╝   ╚══════╝╚═╝  ╚═╝ ╚═════╝ ╚═╝     ",
	}

	fmt.Println()
	for _, line := range banner {
		blue.Println(line)
	}

	fmt.Println()
	title.Println("> Toyshop: toy API and SPA host")
	tip.Println("\nTips:")
	tip.Printf("  1. curl http://127.0.0.1:%d/api/toy   # List toys\n", port)
	tip.Println("  2. toyshop seed                     # Insert demo toys")
	tip.Println("  3. toyshop toys list --sort price   # Browse from the terminal")
	tip.Println("  4. toyshop routes                   # Show every endpoint")
	fmt.Println()

	printedBanner = true
}
