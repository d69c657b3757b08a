package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"leadflow-be/pkg/client"
	"leadflow-be/pkg/client/kanban"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	filterStatus   string
	filterLocation uint
	filterFrom     string
	filterTo       string
	page           int
	perPage        int
)

// leadsCmd lists the leads visible to the session
var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "List leads",
	Long: `List the leads visible to the current session, newest first.

Providers only see leads assigned to them.`,
	Args: cobra.NoArgs,
	RunE: runLeads,
}

// moveCmd changes the status of one lead
var moveCmd = &cobra.Command{
	Use:   "move <lead-id> <status>",
	Short: "Move a lead to another status column",
	Long: `Move a lead to another status column.

The status is applied optimistically and reverted if the API rejects it.`,
	Args: cobra.ExactArgs(2),
	RunE: runMove,
}

func init() {
	leadsCmd.Flags().StringVarP(&filterStatus, "status", "s", "", "Only leads with this status")
	leadsCmd.Flags().UintVar(&filterLocation, "location", 0, "Only leads of this location id (admin)")
	leadsCmd.Flags().StringVar(&filterFrom, "from", "", "Created on or after (YYYY-MM-DD)")
	leadsCmd.Flags().StringVar(&filterTo, "to", "", "Created on or before (YYYY-MM-DD)")
	leadsCmd.Flags().IntVar(&page, "page", 1, "Page number")
	leadsCmd.Flags().IntVar(&perPage, "per-page", 15, "Leads per page")
}

func runLeads(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	log := newLogger()
	defer log.Sync()

	c, err := connect(ctx, log)
	if err != nil {
		return err
	}

	status := client.LeadStatus(filterStatus)
	if status != "" && !status.Valid() {
		return fmt.Errorf("unknown status %q", filterStatus)
	}
	res, err := c.ListLeads(ctx, client.LeadFilter{
		LocationId: filterLocation,
		Status:     status,
		DateFrom:   filterFrom,
		DateTo:     filterTo,
		Page:       page,
		PerPage:    perPage,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPROJECT\tLOCATION\tPROVIDER\tSTATUS\tCREATED")
	for _, l := range res.Data {
		location, provider := "-", "-"
		if l.Location != nil {
			location = l.Location.Name
		}
		if l.ServiceProvider != nil {
			provider = l.ServiceProvider.Name
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.Id, l.Name, l.ProjectType, location, provider,
			statusColor(l.Status).Sprint(l.Status), l.CreatedAt.Format("2006-01-02 15:04"))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	color.White("\nPage %d of %d, %d leads", res.Page, res.LastPage, res.Total)
	return nil
}

func runMove(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid lead id %q", args[0])
	}
	to := client.LeadStatus(args[1])
	if !to.Valid() {
		return fmt.Errorf("unknown status %q, expected one of %v", args[1], client.Statuses)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	log := newLogger()
	defer log.Sync()

	c, err := connect(ctx, log)
	if err != nil {
		return err
	}
	lead, err := c.GetLead(ctx, uint(id))
	if err != nil {
		return err
	}

	if lead.Status == to {
		color.White("Lead #%d is already %s", lead.Id, lead.Status)
		return nil
	}

	board := kanban.NewBoard(c, kanban.WithLogger(log))
	board.Load([]client.Lead{*lead})

	if err := board.Move(ctx, lead.Id, to); err != nil {
		current, _ := board.Status(lead.Id)
		color.Red("✖ Lead #%d stays %s", lead.Id, current)
		return err
	}
	color.Green("✔ Lead #%d moved %s → %s", lead.Id, lead.Status, to)
	return nil
}
