package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/lachlan2k/shiptrack/internal/config"
	"github.com/lachlan2k/shiptrack/internal/models"
)

type loginForm struct {
	Email    string
	Password string
	Role     string
}

func roleOptions(roles map[string]config.Role) []huh.Option[string] {
	names := make([]string, 0, len(roles))
	for name := range roles {
		names = append(names, name)
	}
	sort.Strings(names)

	options := make([]huh.Option[string], len(names))
	for i, name := range names {
		options[i] = huh.NewOption(roles[name].Label, name)
	}
	return options
}

// promptLogin fills in whatever the caller left blank.
func promptLogin(form *loginForm, roles map[string]config.Role) error {
	var fields []huh.Field

	if form.Email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Value(&form.Email).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("email is required")
				}
				return nil
			}))
	}

	if form.Password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&form.Password))
	}

	if form.Role == "" {
		fields = append(fields, huh.NewSelect[string]().
			Title("Role").
			Options(roleOptions(roles)...).
			Value(&form.Role))
	}

	if len(fields) == 0 {
		return nil
	}

	return huh.NewForm(huh.NewGroup(fields...)).Run()
}

func promptSearch() (models.SearchType, string, error) {
	searchType := models.SearchContainer
	var value string

	options := make([]huh.Option[models.SearchType], len(models.SearchTypes))
	for i, t := range models.SearchTypes {
		options[i] = huh.NewOption(t.Label(), t)
	}

	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[models.SearchType]().
			Title("Search by").
			Options(options...).
			Value(&searchType),
		huh.NewInput().
			Title("Reference").
			Placeholder("e.g. MSCU1234567").
			Value(&value),
	))

	if err := form.Run(); err != nil {
		return "", "", err
	}

	return searchType, value, nil
}

func promptPreferences(current models.Preferences) (models.Preferences, error) {
	desired := current

	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Email notifications").
			Affirmative("On").
			Negative("Off").
			Value(&desired.Email),
		huh.NewConfirm().
			Title("Push notifications").
			Affirmative("On").
			Negative("Off").
			Value(&desired.Push),
	))

	if err := form.Run(); err != nil {
		return current, err
	}

	return desired, nil
}

type menuChoice string

const (
	menuSearch        menuChoice = "search"
	menuNotifications menuChoice = "notifications"
	menuRefresh       menuChoice = "refresh"
	menuLogout        menuChoice = "logout"
	menuQuit          menuChoice = "quit"
)

func promptMenu(canEditNotifications bool) (menuChoice, error) {
	choice := menuSearch

	notifLabel := "Notification preferences"
	if !canEditNotifications {
		notifLabel += " (read only)"
	}

	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[menuChoice]().
			Title("What next?").
			Options(
				huh.NewOption("Search shipments", menuSearch),
				huh.NewOption(notifLabel, menuNotifications),
				huh.NewOption("Reload session", menuRefresh),
				huh.NewOption("Log out", menuLogout),
				huh.NewOption("Quit", menuQuit),
			).
			Value(&choice),
	))

	if err := form.Run(); err != nil {
		return menuQuit, err
	}

	return choice, nil
}
