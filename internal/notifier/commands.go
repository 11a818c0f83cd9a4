package notifier

import (
	"context"
	"fmt"
	"strings"

	"TigerChart/internal/model"
)

// ChartFunc renders the text report of one chart request.
type ChartFunc func(ctx context.Context, symbol, period string) (string, error)

// ListFunc returns the selectable instruments.
type ListFunc func(ctx context.Context) ([]model.Instrument, error)

const helpText = "Commands:\n• /chart <symbol> [1mo|3mo|6mo|1y]\n• /list"

// NewCommandHandler routes chat commands to the chart and instrument services.
func NewCommandHandler(chart ChartFunc, list ListFunc) CommandHandler {
	return func(ctx context.Context, command string) string {
		fields := strings.Fields(command)
		if len(fields) == 0 {
			return helpText
		}
		// Group chats address commands as /chart@BotName.
		name, _, _ := strings.Cut(fields[0], "@")

		switch name {
		case "/chart":
			if len(fields) < 2 {
				return "Usage: /chart <symbol> [1mo|3mo|6mo|1y]"
			}
			period := model.DefaultPeriod
			if len(fields) > 2 {
				period = fields[2]
			}
			text, err := chart(ctx, fields[1], period)
			if err != nil {
				return fmt.Sprintf("❌ %s: %v", fields[1], err)
			}
			return text
		case "/list":
			instruments, err := list(ctx)
			if err != nil {
				return fmt.Sprintf("❌ instrument list: %v", err)
			}
			if len(instruments) == 0 {
				return "No instruments available"
			}
			var b strings.Builder
			for _, inst := range instruments {
				b.WriteString(fmt.Sprintf("%s  %s\n", inst.Symbol, inst.Name))
			}
			return b.String()
		default:
			return helpText
		}
	}
}
