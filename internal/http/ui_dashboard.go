package httpx

import (
	"context"
	"net/http"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/domain/lookup"
	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/upstream"
)

// dashboardCounts holds the headline figures shown on the landing page.
type dashboardCounts struct {
	Patients      int
	Pregnancies   int
	Visits        int
	Immunizations int
	OpenReminders int
}

// DashboardReminder is a reminder row shaped for the dashboard panel.
type DashboardReminder struct {
	ID          int
	PatientName string
	TypeName    string
	DueDate     string
}

// Index serves the home dashboard.
// GET /.
func (h *UIHandlers) Index(w http.ResponseWriter, r *http.Request) {
	h.Page(w, r, PageSpec{
		Meta: PageMeta{Title: "ASHA Companion - Dashboard", PageTitle: "Dashboard", CurrentPage: PageHome},
		Fetch: func(ctx context.Context, data map[string]any) error {
			token := BearerFromContext(ctx)
			counts, reminders, err := h.fetchDashboard(ctx, token)
			if err != nil {
				return err
			}
			data["Counts"] = counts
			data["DueReminders"] = reminders
			return nil
		},
	})
}

// Dashboard redirects the legacy path to the home page.
// GET /dashboard.
func (h *UIHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusMovedPermanently)
}

// fetchDashboard fans out the count queries. The API has no dedicated stats
// endpoint, so counts come from the list resources fetched concurrently.
func (h *UIHandlers) fetchDashboard(
	ctx context.Context,
	token string,
) (dashboardCounts, []DashboardReminder, error) {
	var (
		counts    dashboardCounts
		reminders []upstream.Reminder
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		patients, err := h.API.ListPatients(gctx, token, "")
		counts.Patients = len(patients)
		return err
	})
	g.Go(func() error {
		pregnancies, err := h.API.ListPregnancies(gctx, token)
		counts.Pregnancies = len(pregnancies)
		return err
	})
	g.Go(func() error {
		visits, err := h.API.ListVisits(gctx, token)
		counts.Visits = len(visits)
		return err
	})
	g.Go(func() error {
		immunizations, err := h.API.ListImmunizations(gctx, token)
		counts.Immunizations = len(immunizations)
		return err
	})
	g.Go(func() error {
		var err error
		reminders, err = h.API.ListMyReminders(gctx, token)
		return err
	})
	if err := g.Wait(); err != nil {
		return dashboardCounts{}, nil, err
	}

	open := openReminders(reminders)
	counts.OpenReminders = len(open)
	return counts, h.dueReminderRows(open), nil
}

// openReminders filters out completed reminders and orders by due date.
func openReminders(reminders []upstream.Reminder) []upstream.Reminder {
	open := make([]upstream.Reminder, 0, len(reminders))
	for _, rem := range reminders {
		if !rem.Completed() {
			open = append(open, rem)
		}
	}
	sort.SliceStable(open, func(i, j int) bool { return open[i].DueDate < open[j].DueDate })
	return open
}

// dueReminderRows shapes the soonest open reminders for the dashboard panel.
func (h *UIHandlers) dueReminderRows(open []upstream.Reminder) []DashboardReminder {
	const maxDashboardReminders = 5
	if len(open) > maxDashboardReminders {
		open = open[:maxDashboardReminders]
	}

	rows := make([]DashboardReminder, 0, len(open))
	for _, rem := range open {
		rows = append(rows, DashboardReminder{
			ID:          rem.ID,
			PatientName: rem.PatientName,
			TypeName:    h.Lookups.Name(lookup.CategoryReminderTypes, rem.ReminderTypeID),
			DueDate:     rem.DueDate,
		})
	}
	return rows
}
