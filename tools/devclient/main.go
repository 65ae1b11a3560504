// Dev/test client for dev/test/troubleshooting.
package main

import (
	"flag"
	"fmt"
	"math/rand"

	"cleancity/client"
	"cleancity/models"

	"github.com/apex/log"
)

var (
	serviceURL = flag.String("service_url", "http://127.0.0.1:5000", "CleanCity service base URL.")
	userID     = fmt.Sprintf("%X", rand.Uint64())
)

// A tiny valid-looking JPEG header, enough for smoke testing the pipeline.
var sampleImage = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x48}

func doUser(c *client.Client) {
	log.Info("doUser()")
	resp, err := c.UpsertUser(&models.UpsertUserRequest{
		UID:   userID,
		Email: "devclient@example.com",
		Name:  "La Puch da Vinchi",
	})
	if err != nil {
		log.Errorf("Failed to call the server with %v", err)
		return
	}
	log.Infof("Done: %s (%s)", resp.Message, resp.User.Role)
}

func doReport(c *client.Client) int64 {
	log.Info("doReport()")
	resp, err := c.CreateReport(&models.CreateReportRequest{
		Category: "Garbage (87%)",
		Location: &models.LatLng{
			Lat: 35.1293548 + rand.Float64()*2 - 1,
			Lng: -90.1222609 + rand.Float64()*2 - 1,
		},
		Image:        "data:image/jpeg;base64," + string(sampleImage),
		Status:       models.StatusReceived,
		ComplaintID:  client.GenerateComplaintID(),
		ContactName:  "Dev Client",
		ContactPhone: "0000000000",
		Description:  "Smoke-test report",
		UserID:       userID,
	})
	if err != nil {
		log.Errorf("Failed to call the server with %v", err)
		return 0
	}
	log.Infof("Done: %s id=%d complaint=%s", resp.Message, resp.ID, resp.ComplaintID)
	return resp.ID
}

func doList(c *client.Client) {
	log.Info("doList()")
	reports, err := c.ListReports()
	if err != nil {
		log.Errorf("Failed to call the server with %v", err)
		return
	}
	log.Infof("Done: %d reports", len(reports))
	for i, r := range reports {
		if i == 3 {
			break
		}
		log.Infof("  #%d %s [%s] up=%d down=%d", r.Seq, r.Category, r.Status, r.Upvotes, r.Downvotes)
	}
}

func doVote(c *client.Client, id int64) {
	log.Info("doVote()")
	if err := c.Vote(id, "up"); err != nil {
		log.Errorf("Failed to call the server with %v", err)
		return
	}
	log.Info("Done")
}

func doChat(c *client.Client) {
	log.Info("doChat()")
	reply, err := c.Chat("How do I report a pothole?")
	if err != nil {
		log.Errorf("Failed to call the server with %v", err)
		return
	}
	log.Infof("Done: %s", reply)
}

func doLeaderboard(c *client.Client) {
	log.Info("doLeaderboard()")
	records, err := c.Leaderboard()
	if err != nil {
		log.Errorf("Failed to call the server with %v", err)
		return
	}
	for _, rec := range records {
		log.Infof("  %d. %s — %s points", rec.Place, rec.Title, rec.Points)
	}
}

func main() {
	flag.Parse()

	c := client.New(*serviceURL)

	doUser(c)
	id := doReport(c)
	doList(c)
	if id != 0 {
		doVote(c, id)
	}
	doChat(c)
	doLeaderboard(c)
}
