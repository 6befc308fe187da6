// Package seed loads the initial receiver catalog. Receivers are matched by
// model, so running the seed against an already-populated database is a
// no-op for existing rows.
package seed

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"avrctl/pkg/models"

	"gorm.io/gorm"
)

func f64(v float64) *float64 { return &v }

// Run inserts the built-in receiver definitions.
func Run(db *gorm.DB) error {
	for _, receiver := range catalog() {
		if err := seedReceiver(db, receiver); err != nil {
			return err
		}
	}
	return nil
}

func seedReceiver(db *gorm.DB, receiver *models.Receiver) error {
	var existing models.Receiver
	err := db.Where("model = ?", receiver.Model).First(&existing).Error
	if err == nil {
		slog.Info("Receiver already seeded", "component", "Seed", "model", receiver.Model)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("checking for %s: %w", receiver.Model, err)
	}

	if err := db.Create(receiver).Error; err != nil {
		return fmt.Errorf("seeding %s: %w", receiver.Model, err)
	}
	slog.Info("Seeded receiver", "component", "Seed", "model", receiver.Model, "commands", len(receiver.Commands))
	return nil
}

// inputSources are the selectable sources on Denon-family receivers.
var inputSources = []struct {
	ID          string
	Description string
}{
	{"CD", "CD player"},
	{"DVD", "DVD player"},
	{"BD", "Blu-ray player"},
	{"TV", "TV audio"},
	{"SAT/CBL", "Satellite/Cable box"},
	{"MPLAY", "Media player"},
	{"GAME", "Game console"},
	{"TUNER", "Radio tuner"},
	{"AUX1", "Auxiliary input 1"},
	{"NET", "Network/streaming"},
	{"BT", "Bluetooth"},
}

func inputSourceCSV() string {
	ids := make([]string, len(inputSources))
	for i, s := range inputSources {
		ids[i] = s.ID
	}
	return strings.Join(ids, ",")
}

func catalog() []*models.Receiver {
	return []*models.Receiver{
		denonX2300W(),
		denonX4500H(),
	}
}

// denonX2300W drives the receiver over its HTTP control API.
func denonX2300W() *models.Receiver {
	commands := []models.Command{
		{
			ActionType:      "power",
			ActionName:      "power_on",
			Endpoint:        "/MainZone/index.put.asp",
			HTTPMethod:      "GET",
			CommandTemplate: "?cmd0=PutZone_OnOff/ON",
			Description:     "Turn the receiver on (main zone)",
		},
		{
			ActionType:      "power",
			ActionName:      "power_off",
			Endpoint:        "/MainZone/index.put.asp",
			HTTPMethod:      "GET",
			CommandTemplate: "?cmd0=PutZone_OnOff/OFF",
			Description:     "Turn the receiver off (standby mode)",
		},
		{
			ActionType:      "volume",
			ActionName:      "volume_up",
			Endpoint:        "/goform/formiPhoneAppDirect.xml",
			HTTPMethod:      "GET",
			CommandTemplate: "?MVUP",
			Description:     "Increase volume by one step",
		},
		{
			ActionType:      "volume",
			ActionName:      "volume_down",
			Endpoint:        "/goform/formiPhoneAppDirect.xml",
			HTTPMethod:      "GET",
			CommandTemplate: "?MVDOWN",
			Description:     "Decrease volume by one step",
		},
		{
			ActionType:      "volume",
			ActionName:      "volume_set",
			Endpoint:        "/goform/formiPhoneAppDirect.xml",
			HTTPMethod:      "GET",
			CommandTemplate: "?MV{level}",
			Description:     "Set volume to specific level (00-98, where 00=-80dB, 98=+18dB)",
			Parameters: []models.CommandParameter{
				{
					ParamName:   "level",
					ParamType:   models.ParamInteger,
					Required:    true,
					MinValue:    f64(0),
					MaxValue:    f64(98),
					Description: "Volume level (00-98, corresponds to -80dB to +18dB)",
				},
			},
		},
		{
			ActionType:      "mute",
			ActionName:      "mute_on",
			Endpoint:        "/MainZone/index.put.asp",
			HTTPMethod:      "GET",
			CommandTemplate: "?cmd0=PutVolumeMute/on",
			Description:     "Enable mute",
		},
		{
			ActionType:      "mute",
			ActionName:      "mute_off",
			Endpoint:        "/MainZone/index.put.asp",
			HTTPMethod:      "GET",
			CommandTemplate: "?cmd0=PutVolumeMute/off",
			Description:     "Disable mute",
		},
		{
			ActionType:      "mute",
			ActionName:      "mute_toggle",
			Endpoint:        "/goform/formiPhoneAppDirect.xml",
			HTTPMethod:      "GET",
			CommandTemplate: "?MUON",
			Description:     "Toggle mute on/off",
		},
		{
			ActionType:      "input",
			ActionName:      "change_input",
			Endpoint:        "/goform/formiPhoneAppDirect.xml",
			HTTPMethod:      "GET",
			CommandTemplate: "?SI{input_source}",
			Description:     "Change input source",
			Parameters: []models.CommandParameter{
				{
					ParamName:   "input_source",
					ParamType:   models.ParamEnum,
					Required:    true,
					ValidValues: inputSourceCSV(),
					Description: "Input source identifier",
				},
			},
		},
	}

	for _, source := range inputSources {
		name := strings.ToLower(strings.ReplaceAll(source.ID, "/", "_"))
		commands = append(commands, models.Command{
			ActionType:      "input",
			ActionName:      "input_" + name,
			Endpoint:        "/goform/formiPhoneAppDirect.xml",
			HTTPMethod:      "GET",
			CommandTemplate: "?SI" + source.ID,
			Description:     "Switch input to " + source.Description,
		})
	}

	return &models.Receiver{
		Manufacturer: "Denon",
		Model:        "AVR-X2300W",
		Protocol:     models.ProtocolHTTP,
		DefaultPort:  80,
		Description:  "Denon AVR-X2300W 7.2 Channel AV Receiver with HEOS",
		Commands:     commands,
	}
}

// denonX4500H drives the receiver over the single-client telnet control
// protocol: CR-terminated uppercase tokens on port 23. Set commands are
// fire-and-forget; query commands echo a reply line.
func denonX4500H() *models.Receiver {
	return &models.Receiver{
		Manufacturer: "Denon",
		Model:        "AVR-X4500H",
		Protocol:     models.ProtocolTelnet,
		DefaultPort:  23,
		Description:  "Denon AVR-X4500H 9.2 Channel AV Receiver, telnet control",
		Commands: []models.Command{
			{
				ActionType:      "power",
				ActionName:      "power_on",
				CommandTemplate: "PWON",
				Description:     "Turn the receiver on",
			},
			{
				ActionType:      "power",
				ActionName:      "power_off",
				CommandTemplate: "PWSTANDBY",
				Description:     "Put the receiver into standby",
			},
			{
				ActionType:      "power",
				ActionName:      "power_query",
				CommandTemplate: "PW?",
				ExpectsResponse: true,
				Description:     "Query power state",
			},
			{
				ActionType:      "volume",
				ActionName:      "volume_set",
				CommandTemplate: "MV{level}",
				Description:     "Set master volume (00-98)",
				Parameters: []models.CommandParameter{
					{
						ParamName:   "level",
						ParamType:   models.ParamInteger,
						Required:    true,
						MinValue:    f64(0),
						MaxValue:    f64(98),
						Description: "Volume level (00-98)",
					},
				},
			},
			{
				ActionType:      "volume",
				ActionName:      "volume_query",
				CommandTemplate: "MV?",
				ExpectsResponse: true,
				Description:     "Query master volume",
			},
			{
				ActionType:      "mute",
				ActionName:      "mute_on",
				CommandTemplate: "MUON",
				Description:     "Enable mute",
			},
			{
				ActionType:      "mute",
				ActionName:      "mute_off",
				CommandTemplate: "MUOFF",
				Description:     "Disable mute",
			},
			{
				ActionType:      "input",
				ActionName:      "change_input",
				CommandTemplate: "SI{input_source}",
				Description:     "Change input source",
				Parameters: []models.CommandParameter{
					{
						ParamName:   "input_source",
						ParamType:   models.ParamEnum,
						Required:    true,
						ValidValues: inputSourceCSV(),
						Description: "Input source identifier",
					},
				},
			},
		},
	}
}
