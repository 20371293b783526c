package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;color:#222">
<h2>Your ticket is confirmed</h2>
<p>Hello {{.Username}},</p>
<p>Your booking is confirmed. Please keep the PNR below for reference.</p>
<table cellpadding="6" style="border-collapse:collapse">
<tr><td><b>PNR</b></td><td>{{.PNR}}</td></tr>
<tr><td><b>Route</b></td><td>{{.RouteName}} ({{.FromStation}} to {{.ToStation}})</td></tr>
<tr><td><b>Distance</b></td><td>{{.DistanceKm}} km</td></tr>
<tr><td><b>Travel date</b></td><td>{{.TravelDate}}</td></tr>
<tr><td><b>Coach</b></td><td>{{.Coach}}</td></tr>
<tr><td><b>Seat</b></td><td>{{.Seat}}</td></tr>
<tr><td><b>Passenger</b></td><td>{{.PassengerName}}, {{.PassengerAge}}</td></tr>
<tr><td><b>Fare</b></td><td>{{.Fare}}</td></tr>
<tr><td><b>Payment</b></td><td>Pay at Station</td></tr>
</table>
<p>Have a pleasant journey.</p>
</body></html>`))

var cancellationTmpl = template.Must(template.New("cancellation").Parse(`<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;color:#222">
<h2>Your booking has been cancelled</h2>
<p>Hello {{.Username}},</p>
<p>Booking <b>{{.PNR}}</b> for {{.PassengerName}} on {{.RouteName}}
({{.FromStation}} to {{.ToStation}}) on {{.TravelDate}}, coach {{.Coach}} seat {{.Seat}},
has been cancelled. The seat has been released.</p>
</body></html>`))

func render(t *template.Template, r Receipt) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
