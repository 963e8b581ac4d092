package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pranayvarade/livefolio/internal/inbox"
)

var (
	inboxLimit int
	inboxJSON  bool
)

var inboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "Work with stored contact messages",
}

var inboxListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored contact messages, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := inbox.Open(cfg.Contact.Database)
		if err != nil {
			return err
		}
		defer store.Close()

		msgs, err := store.List(cmd.Context(), inboxLimit)
		if err != nil {
			return err
		}
		if inboxJSON {
			return writeMessagesJSON(cmd.OutOrStdout(), msgs)
		}
		return writeMessages(cmd.OutOrStdout(), msgs)
	},
}

func init() {
	inboxListCmd.Flags().IntVarP(&inboxLimit, "limit", "n", 20, "maximum messages to show (0 for all)")
	inboxListCmd.Flags().BoolVar(&inboxJSON, "json", false, "print messages as JSON")
	inboxCmd.AddCommand(inboxListCmd)
	rootCmd.AddCommand(inboxCmd)
}

func writeMessages(w io.Writer, msgs []inbox.Message) error {
	if len(msgs) == 0 {
		_, err := fmt.Fprintln(w, "No messages.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RECEIVED\tNAME\tEMAIL\tSUBJECT")
	for _, m := range msgs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			m.ReceivedAt.Format(time.RFC3339), m.Form.Name, m.Form.Email, m.Form.Subject)
	}
	return tw.Flush()
}

type messageJSON struct {
	ID         string    `json:"id"`
	ReceivedAt time.Time `json:"received_at"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Company    string    `json:"company,omitempty"`
	Subject    string    `json:"subject"`
	Message    string    `json:"message"`
}

func writeMessagesJSON(w io.Writer, msgs []inbox.Message) error {
	out := make([]messageJSON, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageJSON{
			ID:         m.ID,
			ReceivedAt: m.ReceivedAt,
			Name:       m.Form.Name,
			Email:      m.Form.Email,
			Company:    m.Form.Company,
			Subject:    m.Form.Subject,
			Message:    m.Form.Message,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
