// Command dealctl runs the background jobs by hand against the configured
// database and prints what they did.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/olekukonko/tablewriter"

	"dealcore/internal/clients"
	"dealcore/internal/clock"
	"dealcore/internal/config"
	"dealcore/internal/domain"
	"dealcore/internal/repos"
	"dealcore/internal/services"
)

const usage = `usage: dealctl <command> [flags]

commands:
  refresh-deals-of-the-day   rebuild today's deals of the day
  reconcile                  pull fresh owner profiles into the search indexes
  deals-of-the-day           list the active deals of the day
  deal-codes [-date YYYY-MM-DD]
                             list the deal codes issued on a day (default today)
`

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cfg := config.Load()
	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	store := repos.NewStore(db)
	c := clock.RealClock{}
	loc := cfg.Location()

	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()

	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "refresh-deals-of-the-day":
		svc := services.NewDealsOfTheDayService(store, c, loc, cfg.DealsOfTheDayLimit)
		res, err := svc.Refresh(ctx)
		if err != nil {
			log.Fatal(err)
		}
		printRefresh(res)
	case "reconcile":
		profiles := clients.NewProfileClient(cfg.ProfileServiceURL, cfg.HTTPClientTimeout)
		svc := services.NewReconcileService(store, profiles, services.NewIndexSync(store, c), cfg.ReconcilePageSize)
		res, err := svc.Run(ctx)
		if err != nil {
			log.Fatal(err)
		}
		printReconcile(res)
	case "deals-of-the-day":
		svc := services.NewDealsOfTheDayService(store, c, loc, cfg.DealsOfTheDayLimit)
		rows, err := svc.Active(ctx)
		if err != nil {
			log.Fatal(err)
		}
		printDealsOfTheDay(rows)
	case "deal-codes":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		date := fs.String("date", clock.Today(c, loc).Format(domain.DateLayout), "issue date, YYYY-MM-DD")
		_ = fs.Parse(args)
		if _, err := time.Parse(domain.DateLayout, *date); err != nil {
			log.Fatalf("bad -date %q: %v", *date, err)
		}
		codes, err := repos.NewDealCodeRepo(db).ForDate(ctx, *date)
		if err != nil {
			log.Fatal(err)
		}
		printCodes(codes)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func render(header []string, rows [][]string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header(header)
	for _, r := range rows {
		if err := table.Append(r); err != nil {
			log.Fatal(err)
		}
	}
	if err := table.Render(); err != nil {
		log.Fatal(err)
	}
}

func printRefresh(res services.RefreshResult) {
	rows := [][]string{}
	for _, kind := range []domain.OwnerKind{domain.OwnerMerchant, domain.OwnerBank} {
		rows = append(rows, []string{res.Date, string(kind), strconv.Itoa(res.Inserted[kind])})
	}
	fmt.Printf("deactivated %d records, removed %d index rows\n", res.Deactivated, res.Removed)
	render([]string{"Date", "Kind", "Inserted"}, rows)
}

func printReconcile(res services.ReconcileResult) {
	fmt.Printf("scanned %d index rows across %d owners, %d changed\n", res.Scanned, res.Owners, len(res.Changed))
	tables := make([]string, 0, len(res.Patched))
	for t := range res.Patched {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	rows := [][]string{}
	for _, t := range tables {
		rows = append(rows, []string{t, strconv.FormatInt(res.Patched[t], 10)})
	}
	render([]string{"Index", "Rows patched"}, rows)
}

func printDealsOfTheDay(recs []domain.DealOfTheDay) {
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []string{r.DealDate, string(r.OwnerKind), r.DealID})
	}
	render([]string{"Date", "Kind", "Deal"}, rows)
}

func printCodes(codes []domain.DealCode) {
	rows := make([][]string, 0, len(codes))
	for _, c := range codes {
		rows = append(rows, []string{c.Code, c.DealType, strconv.Itoa(c.DealNumberForTheDay), c.CreatedAt.Format(time.RFC3339)})
	}
	render([]string{"Code", "Type", "Number", "Issued"}, rows)
}
