package telegram

import (
	"strings"

	"telegram-vpn-shop/internal/usecase"
)

// commandRoutes is the closed command table. Anything not listed is
// ActionUnknown and handled as such by the flow.
var commandRoutes = map[string]usecase.ActionKind{
	"start":       usecase.ActionStart,
	"menu":        usecase.ActionMenu,
	"help":        usecase.ActionHelp,
	"about":       usecase.ActionAbout,
	"status":      usecase.ActionStatus,
	"limitations": usecase.ActionLimitations,
	"privacy":     usecase.ActionPrivacy,
	"tutorial":    usecase.ActionTutorial,
	"terms":       usecase.ActionTerms,
	"support":     usecase.ActionSupport,
	"whatsnew":    usecase.ActionWhatsNew,
	"buy":         usecase.ActionBuy,
	"getapp":      usecase.ActionGetApp,
	"cancel":      usecase.ActionCancel,
}

func parseCommand(cmd string) usecase.ActionKind {
	if kind, ok := commandRoutes[strings.ToLower(cmd)]; ok {
		return kind
	}
	return usecase.ActionUnknown
}

// parseCallback splits "prefix:payload" button data into an action.
func parseCallback(data string) (usecase.ActionKind, string) {
	prefix, payload, _ := strings.Cut(data, ":")
	switch prefix {
	case "menu":
		switch payload {
		case "help":
			return usecase.ActionHelp, ""
		case "about":
			return usecase.ActionAbout, ""
		case "buy":
			return usecase.ActionBuy, ""
		case "getapp":
			return usecase.ActionGetApp, ""
		case "privacy":
			return usecase.ActionPrivacy, ""
		case "terms":
			return usecase.ActionTerms, ""
		case "menu":
			return usecase.ActionMenu, ""
		}
		return usecase.ActionUnknown, ""
	case "product":
		return usecase.ActionProduct, payload
	case "app":
		return usecase.ActionApp, payload
	case "os":
		return usecase.ActionOS, payload
	case "check":
		return usecase.ActionCheckPayment, payload
	}
	return usecase.ActionUnknown, ""
}
