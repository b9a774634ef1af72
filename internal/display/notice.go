package display

import (
	"fmt"

	"github.com/pixil98/go-timeloop/internal/event"
)

var noticeTemplates = map[event.Kind]string{
	event.KindHourChanged:     `Day {{ .Day }}, {{ .Hour }}:00.`,
	event.KindPeriodChanged:   `The {{ .From }} gives way to {{ .To }}.`,
	event.KindDayReset:        `The day begins again. Day {{ .Day }}.`,
	event.KindLocationChanged: `You arrive at {{ .Name }}.`,
	event.KindCharacterMoved:  `{{ .Name }} heads to {{ humanize (toString .To) }}{{ with .Activity }} ({{ . }}){{ end }}.`,
	event.KindDiscovery:       `Discovered: {{ .Name }}!`,
	event.KindGrowthMilestone: `{{ .Message }}{{ if .NewTrait }} You feel more {{ .NewTrait }}.{{ end }}`,
	event.KindSpecialEvent:    `{{ .Description }}`,
	event.KindSecretRevealed:  `{{ humanize (toString .Character) }} confides: "{{ .Secret }}"`,
	event.KindQuestUpdated:    `Quest "{{ .Title }}" is now {{ replace "_" " " .New }}.`,
	event.KindNotice:          `{{ .Message }}`,
}

// RenderEvent turns an event into a wrapped line of text for a player.
func RenderEvent(ev event.Event) (string, error) {
	tmpl, ok := noticeTemplates[ev.Kind()]
	if !ok {
		return "", fmt.Errorf("no notice template for %q", ev.Kind())
	}

	text, err := ExpandTemplate(tmpl, ev)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", ev.Kind(), err)
	}

	return Wrap(Capitalize(text)), nil
}
