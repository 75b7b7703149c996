package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/wb-go/wbf/zlog"

	"github.com/unclebandit/donorlink-backend/internal/channel"
	"github.com/unclebandit/donorlink-backend/internal/config"
	"github.com/unclebandit/donorlink-backend/internal/db"
	appErrors "github.com/unclebandit/donorlink-backend/internal/errors"
	"github.com/unclebandit/donorlink-backend/internal/model"
	"github.com/unclebandit/donorlink-backend/internal/repository"
	"github.com/unclebandit/donorlink-backend/internal/selection"
	"github.com/unclebandit/donorlink-backend/internal/service"
)

var (
	outputJSON   bool
	operatorID   string
	bloodGroup   string
	city         string
	selectAll    bool
	adminContact string
)

var rootCmd = &cobra.Command{
	Use:   "outreach",
	Short: "Donor directory outreach tool",
	Long: `A CLI for browsing the blood donor directory and sending throttled
WhatsApp outreach to a selection of donors.`,
	SilenceUsage: true,
}

var donorsCmd = &cobra.Command{
	Use:   "donors",
	Short: "List donors",
	Long:  `List donors newest first, optionally filtered by blood group and city.`,
	Args:  cobra.NoArgs,
	RunE:  runDonors,
}

var sendCmd = &cobra.Command{
	Use:   "send [donor-id...]",
	Short: "Send outreach to selected donors",
	Long: `Send the outreach message to the given donors, or to every listed donor
with --all. Messages go out one at a time with the configured delay between them.`,
	RunE: runSend,
}

var historyCmd = &cobra.Command{
	Use:   "history [donor-id]",
	Short: "Show the message audit log for a donor",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&operatorID, "operator", service.DefaultOperatorID, "operator profile id")
	rootCmd.PersistentFlags().StringVar(&bloodGroup, "blood-group", "", "filter by blood group (e.g. O+)")
	rootCmd.PersistentFlags().StringVar(&city, "city", "", "filter by city (substring)")

	sendCmd.Flags().BoolVar(&selectAll, "all", false, "select every donor matching the filters")
	sendCmd.Flags().StringVar(&adminContact, "admin-contact", "", "override the admin WhatsApp contact")

	rootCmd.AddCommand(donorsCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	zlog.Init()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	cfg       *config.Config
	directory *service.DirectoryService
	messages  *repository.MessageRepository
	settings  *service.ProfileSettingsResolver
	close     func() error
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	conn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	messages := &repository.MessageRepository{DB: conn}
	return &app{
		cfg:       cfg,
		directory: &service.DirectoryService{Donors: &repository.DonorRepository{DB: conn}, Messages: messages},
		messages:  messages,
		settings: &service.ProfileSettingsResolver{
			Profiles:        &repository.ProfileRepository{DB: conn},
			Secrets:         &repository.SecretRepository{DB: conn},
			FallbackContact: cfg.Outreach.AdminContact,
			FallbackCredentials: channel.Credentials{
				Token:         cfg.WhatsApp.Token,
				PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
			},
		},
		close: conn.Close,
	}, nil
}

func runDonors(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	donors, err := a.directory.List(ctx, model.DonorFilter{BloodGroup: bloodGroup, City: city})
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(cmd.OutOrStdout(), donors)
	}
	printDonors(cmd.OutOrStdout(), donors)
	return nil
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	visible, err := a.directory.List(ctx, model.DonorFilter{BloodGroup: bloodGroup, City: city})
	if err != nil {
		return err
	}

	targets, err := pick(visible, args, selectAll)
	if err != nil {
		return err
	}

	settings, err := a.settings.Resolve(ctx, operatorID)
	if adminContact != "" {
		settings.AdminContact = adminContact
		err = nil
	}
	if err != nil && !errors.Is(err, appErrors.ErrConfigurationMissing) {
		return err
	}

	out := cmd.OutOrStdout()
	adapter, err := channel.New(a.cfg, channel.OpenerFunc(func(_ context.Context, link string) error {
		_, err := fmt.Fprintf(out, "open: %s\n", link)
		return err
	}))
	if err != nil {
		return err
	}

	dispatcher := service.NewDispatcher(adapter, a.messages, service.MultiReporter{
		service.LogReporter{},
		progressPrinter{w: out},
	}, service.DispatcherOptions{
		MaxSelection:    a.cfg.Outreach.MaxSelection,
		MessageTemplate: a.cfg.Outreach.MessageTemplate,
		Normalizer:      channel.NewPhoneNormalizer(a.cfg.Outreach),
		Delayer:         service.NewDelayer(a.cfg.Outreach),
		Retry:           a.cfg.Retry,
	})

	summary, err := dispatcher.Run(ctx, targets, settings)
	if err != nil {
		return err
	}

	_, job := dispatcher.Snapshot()
	if outputJSON {
		return printJSON(out, job)
	}
	printJob(out, job, summary)
	return nil
}

// pick builds the selection the way the operator would in the directory:
// from the visible list only, in the order given.
func pick(visible []model.Donor, ids []string, all bool) ([]model.Donor, error) {
	byID := make(map[string]model.Donor, len(visible))
	visibleIDs := make([]string, len(visible))
	for i, d := range visible {
		byID[d.ID] = d
		visibleIDs[i] = d.ID
	}

	tracker := selection.NewTracker()
	if all {
		tracker.SelectAll(visibleIDs)
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("donor %s is not in the filtered list", id)
		}
		if !tracker.Contains(id) {
			tracker.Toggle(id)
		}
	}

	targets := make([]model.Donor, 0, tracker.Len())
	for _, id := range tracker.IDs() {
		targets = append(targets, byID[id])
	}
	return targets, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	entries, err := a.directory.History(ctx, args[0])
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(cmd.OutOrStdout(), entries)
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Sent At", "Channel", "Status", "Message"})
	for _, e := range entries {
		table.Append([]string{e.SentAt.Format("2006-01-02 15:04"), string(e.MessageType), string(e.Status), e.MessageText})
	}
	table.Render()
	return nil
}

// progressPrinter writes one line per recipient outcome.
type progressPrinter struct {
	w io.Writer
}

func (p progressPrinter) Report(e service.Event) {
	switch e.Type {
	case service.EventRecipientSent:
		fmt.Fprintf(p.w, "[%d/%d] sent to %s (%d%%)\n", e.Position, e.Total, e.DonorName, e.Progress)
	case service.EventRecipientFailed:
		fmt.Fprintf(p.w, "[%d/%d] failed for %s: %s (%d%%)\n", e.Position, e.Total, e.DonorName, e.Reason, e.Progress)
	case service.EventAborted:
		fmt.Fprintf(p.w, "aborted: %s\n", e.Reason)
	}
}

func printDonors(w io.Writer, donors []model.Donor) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Name", "Blood Group", "City", "Phone", "Donations"})
	for _, d := range donors {
		table.Append([]string{d.ID, d.Name, string(d.BloodGroup), d.City, d.Phone, strconv.Itoa(d.DonationCount)})
	}
	table.Render()
}

func printJob(w io.Writer, job *model.OutreachJob, summary *model.Summary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Donor", "Phone", "Status", "Detail"})
	for _, t := range job.Targets {
		detail := t.Error
		if detail == "" {
			detail = t.Link
		}
		table.Append([]string{t.Donor.Name, t.Donor.Phone, string(t.Status), detail})
	}
	table.Render()

	fmt.Fprintf(w, "\nSent %d, failed %d of %d\n", summary.Sent, summary.Failed, summary.Total)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
