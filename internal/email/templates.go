package email

import (
	"fmt"
	"html"
	"strings"
	"time"

	"oitivas-pro/internal/views"
)

var accentColors = map[string]string{
	views.AccentInvestigado: "#F43F5E",
	views.AccentVitima:      "#F59E0B",
	views.AccentDone:        "#10B981",
	views.AccentDefault:     "#94A3B8",
}

// DailyDigestTemplate gera HTML com a agenda do dia
func DailyDigestTemplate(unit string, day time.Time, agenda views.Agenda) string {
	var rows strings.Builder
	for _, it := range agenda.Items {
		done := ""
		if it.Done {
			done = " ✔"
		}
		fmt.Fprintf(&rows, `
            <tr style="border-left: 4px solid %s;">
                <td class="time">%s</td>
                <td><strong>%s</strong>%s<br><span class="proc">%s</span></td>
            </tr>`,
			accentColors[it.Accent], html.EscapeString(it.Time), html.EscapeString(it.Name), done, html.EscapeString(it.Proc))
	}

	body := rows.String()
	if len(agenda.Items) == 0 {
		body = fmt.Sprintf(`<tr><td colspan="2" class="empty">%s</td></tr>`, views.NoSchedule)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; background-color: #f4f4f4; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 8px; overflow: hidden; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .header { background-color: #312E81; color: white; padding: 20px; text-align: center; }
        .header h1 { margin: 0; font-size: 22px; }
        .content { padding: 30px; }
        table { width: 100%%; border-collapse: collapse; }
        td { padding: 10px; border-bottom: 1px solid #f1f5f9; font-size: 14px; }
        .time { white-space: nowrap; color: #4338CA; font-weight: bold; }
        .proc { color: #64748B; font-size: 12px; }
        .empty { text-align: center; color: #94A3B8; }
        .footer { background-color: #f8f9fa; padding: 15px; text-align: center; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>📋 %s</h1>
        </div>
        <div class="content">
            <p><strong>%s</strong></p>
            <table>%s
            </table>
        </div>
        <div class="footer">
            <p>Este é um email automático do OitivasPro</p>
            <p>Não responda a este email</p>
        </div>
    </div>
</body>
</html>
    `, html.EscapeString(unit), views.LongDate(day), body)
}
