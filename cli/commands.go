package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"toyshop/codeanalysis"
	"toyshop/openapi"
	"toyshop/toy"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// CLI colors and styles
var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan, color.Bold)
	headerColor  = color.New(color.FgMagenta, color.Bold)
	subtleColor  = color.New(color.FgHiBlack)
)

// Labels offered by the interactive prompts and used by the seed data.
var Labels = []string{"On wheels", "Box game", "Art", "Baby", "Doll", "Puzzle", "Outdoor", "Battery Powered"}

// Opener opens the configured toy store. Commands close it when done.
type Opener func(ctx context.Context) (toy.Store, error)

// CreateCLICommands creates the operator commands. Every command opens the
// store through open, so flags and config are resolved first.
func CreateCLICommands(open Opener) []*cobra.Command {
	var commands []*cobra.Command

	toysCmd := &cobra.Command{
		Use:   "toys",
		Short: "Manage toys in the configured store",
	}

	var lf listFlags
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List toys",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), open, func(ctx context.Context, s toy.Store) error {
				return listToys(ctx, s, cmd.OutOrStdout(), lf)
			})
		},
	}
	listCmd.Flags().StringVar(&lf.txt, "txt", "", "Regular expression matched against toy names")
	listCmd.Flags().Float64Var(&lf.minPrice, "min-price", 0, "Minimum price")
	listCmd.Flags().Float64Var(&lf.maxPrice, "max-price", 0, "Maximum price")
	listCmd.Flags().StringSliceVar(&lf.labels, "label", nil, "Required label (repeatable)")
	listCmd.Flags().StringVar(&lf.sort, "sort", "", "Sort by name, price or createdAt")
	listCmd.Flags().BoolVar(&lf.desc, "desc", false, "Sort descending")
	listCmd.Flags().StringVar(&lf.page, "page", "", "Page index")

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a toy with interactive prompts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), open, addToyInteractive)
		},
	}

	var yes bool
	removeCmd := &cobra.Command{
		Use:     "remove [toy-id]",
		Short:   "Remove a toy",
		Aliases: []string{"rm", "delete"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), open, func(ctx context.Context, s toy.Store) error {
				return removeToy(ctx, s, args[0], yes)
			})
		},
	}
	removeCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	toysCmd.AddCommand(listCmd, addCmd, removeCmd)
	commands = append(commands, toysCmd)

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert a set of demo toys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), open, func(ctx context.Context, s toy.Store) error {
				n, err := SeedToys(ctx, s)
				if err != nil {
					return err
				}
				successColor.Printf("✅ Seeded %d toy(s)\n", n)
				subtleColor.Println("💡 Tip: 'toyshop toys list --sort price --desc' to browse them")
				return nil
			})
		},
	}
	commands = append(commands, seedCmd)

	var host string
	routesCmd := &cobra.Command{
		Use:   "routes [spec-file]",
		Short: "List the HTTP endpoints of the toy API (or of a Swagger file)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var found *openapi.DiscoveredEndpoints
			var err error
			if len(args) > 0 {
				found, err = openapi.ParseSpecFile(args[0])
			} else {
				var data []byte
				data, err = openapi.MarshalDocument(host)
				if err == nil {
					found, err = openapi.ParseDocument(data, "built-in")
				}
			}
			if err != nil {
				return err
			}
			return renderEndpoints(cmd.OutOrStdout(), found)
		},
	}
	routesCmd.Flags().StringVar(&host, "host", "localhost:3030", "Host used in the listed URLs")
	commands = append(commands, routesCmd)

	auditCmd := &cobra.Command{
		Use:   "audit [frontend-dir]",
		Short: "Find API calls in front-end sources that no toy API route serves",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "public"
			if len(args) > 0 {
				dir = args[0]
			}
			unserved, err := auditFrontend(cmd.OutOrStdout(), dir)
			if err != nil {
				return err
			}
			if unserved > 0 {
				return fmt.Errorf("%d call(s) have no matching route", unserved)
			}
			return nil
		},
	}
	commands = append(commands, auditCmd)

	return commands
}

func withStore(ctx context.Context, open Opener, fn func(context.Context, toy.Store) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := open(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()
	return fn(ctx, s)
}

type listFlags struct {
	txt      string
	minPrice float64
	maxPrice float64
	labels   []string
	sort     string
	desc     bool
	page     string
}

func (f listFlags) query() (toy.FilterBy, toy.SortBy) {
	sortBy := toy.SortBy{Type: f.sort}
	if f.desc {
		sortBy.Desc = -1
	}
	return toy.FilterBy{Txt: f.txt, MinPrice: f.minPrice, MaxPrice: f.maxPrice, Labels: f.labels}, sortBy
}

// listToys displays toys in a table
func listToys(ctx context.Context, svc toy.Service, w io.Writer, f listFlags) error {
	filterBy, sortBy := f.query()
	toys, err := svc.Query(ctx, filterBy, sortBy, f.page)
	if err != nil {
		return err
	}
	if len(toys) == 0 {
		infoColor.Fprintln(w, "📝 No toys found. Use 'toyshop toys add' or 'toyshop seed' to create some!")
		return nil
	}

	headerColor.Fprintf(w, "\n🧸 Found %d toy(s):\n\n", len(toys))
	return renderToys(w, toys)
}

func renderToys(w io.Writer, toys []toy.Toy) error {
	table := tablewriter.NewWriter(w)
	table.Header("#", "ID", "Name", "Price", "Labels", "Created")

	for i, t := range toys {
		name := t.Name
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		created := "-"
		if t.CreatedAt > 0 {
			created = time.UnixMilli(t.CreatedAt).Format("2006-01-02 15:04")
		}
		table.Append(strconv.Itoa(i+1), t.ID, name, formatPrice(t.Price), strings.Join(t.Labels, ", "), created)
	}
	return table.Render()
}

func formatPrice(p toy.Price) string {
	if p.IsNaN() {
		return "NaN"
	}
	return strconv.FormatFloat(float64(p), 'f', -1, 64)
}

func renderEndpoints(w io.Writer, found *openapi.DiscoveredEndpoints) error {
	if found.Info.Title != "" {
		infoColor.Fprintf(w, "API: %s", found.Info.Title)
		if found.Info.Version != "" {
			fmt.Fprintf(w, " (v%s)", found.Info.Version)
		}
		fmt.Fprintln(w)
	}

	table := tablewriter.NewWriter(w)
	table.Header("#", "Method", "Path", "Full URL", "Summary")
	for i, e := range found.Endpoints {
		summary := e.Summary
		if summary == "" {
			summary = e.Description
		}
		if len(summary) > 50 {
			summary = summary[:47] + "..."
		}
		table.Append([]string{strconv.Itoa(i + 1), e.Method, e.Path, e.FullURL, summary})
	}
	return table.Render()
}

// auditFrontend prints every API call under dir and returns how many are unserved
func auditFrontend(w io.Writer, dir string) (int, error) {
	routes := openapi.Endpoints(openapi.Document("localhost"), "built-in").Endpoints
	res, err := codeanalysis.AnalyzeDirectory(dir, routes)
	if err != nil {
		return 0, err
	}
	for _, skipped := range res.Skipped {
		warningColor.Fprintf(w, "⚠️  Could not read %s\n", skipped)
	}
	if len(res.Calls) == 0 {
		infoColor.Fprintf(w, "📝 No API calls found under %s\n", dir)
		return 0, nil
	}

	headerColor.Fprintf(w, "\n🔎 Found %d API call(s) in %d file(s):\n\n", len(res.Calls), len(res.Files))
	table := tablewriter.NewWriter(w)
	table.Header("Method", "URL", "Location", "Via", "Served")
	for _, c := range res.Calls {
		served := "yes"
		if !c.Served {
			served = "NO"
		}
		table.Append(c.Method, c.URL, fmt.Sprintf("%s:%d", c.File, c.Line), c.Type, served)
	}
	if err := table.Render(); err != nil {
		return 0, err
	}
	return len(res.Unserved()), nil
}

// addToyInteractive creates a toy from survey prompts
func addToyInteractive(ctx context.Context, s toy.Store) error {
	headerColor.Println("\n🚀 Creating a new toy...")

	var name string
	if err := survey.AskOne(&survey.Input{Message: "Name:"}, &name, survey.WithValidator(survey.Required)); err != nil {
		return err
	}

	var priceStr string
	pricePrompt := &survey.Input{
		Message: "Price:",
		Default: "10",
	}
	if err := survey.AskOne(pricePrompt, &priceStr, survey.WithValidator(validatePrice)); err != nil {
		return err
	}
	price, _ := strconv.ParseFloat(strings.TrimSpace(priceStr), 64)

	var labels []string
	labelPrompt := &survey.MultiSelect{
		Message: "Labels:",
		Options: Labels,
	}
	if err := survey.AskOne(labelPrompt, &labels); err != nil {
		return err
	}

	saved, err := s.Save(ctx, toy.Toy{Name: name, Price: toy.Price(price), Labels: labels})
	if err != nil {
		return err
	}

	successColor.Println("\n✅ Toy created successfully!")
	infoColor.Printf("   ID: %s\n", saved.ID)
	infoColor.Printf("   Name: %s\n", saved.Name)
	infoColor.Printf("   Price: %s\n", formatPrice(saved.Price))
	if len(saved.Labels) > 0 {
		infoColor.Printf("   Labels: %s\n", strings.Join(saved.Labels, ", "))
	}
	return nil
}

func validatePrice(ans interface{}) error {
	s, _ := ans.(string)
	if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
		return fmt.Errorf("%q is not a number", s)
	}
	return nil
}

// removeToy deletes a toy, asking for confirmation unless yes is set
func removeToy(ctx context.Context, svc toy.Service, id string, yes bool) error {
	t, err := svc.Get(ctx, id)
	if err != nil {
		errorColor.Printf("❌ Toy '%s' not found\n", id)
		return err
	}

	if !yes {
		confirm := false
		confirmPrompt := &survey.Confirm{
			Message: fmt.Sprintf("Are you sure you want to remove '%s'?", t.Name),
			Default: false,
		}
		if err := survey.AskOne(confirmPrompt, &confirm); err != nil || !confirm {
			warningColor.Println("❌ Removal cancelled")
			return err
		}
	}

	msg, err := svc.Remove(ctx, id)
	if err != nil {
		return err
	}
	successColor.Printf("✅ %s: '%s' (%s)\n", msg, t.Name, id)
	return nil
}

// SeedToys saves the demo toys and returns how many were added.
func SeedToys(ctx context.Context, svc toy.Service) (int, error) {
	demo := []toy.Toy{
		{Name: "Talking Doll", Price: 123, Labels: []string{"Doll", "Battery Powered", "Baby"}},
		{Name: "Race Car", Price: 80, Labels: []string{"On wheels", "Battery Powered"}},
		{Name: "Puzzle Box", Price: 45, Labels: []string{"Puzzle", "Box game"}},
		{Name: "Teddy Bear", Price: 25, Labels: []string{"Baby", "Doll"}},
		{Name: "Crayon Set", Price: 12, Labels: []string{"Art"}},
		{Name: "Kite", Price: 30, Labels: []string{"Outdoor"}},
		{Name: "Wooden Train", Price: 60, Labels: []string{"On wheels", "Baby"}},
		{Name: "Chess", Price: 55, Labels: []string{"Box game"}},
	}
	for i, t := range demo {
		if _, err := svc.Save(ctx, t); err != nil {
			return i, fmt.Errorf("seed %q: %w", t.Name, err)
		}
	}
	return len(demo), nil
}
