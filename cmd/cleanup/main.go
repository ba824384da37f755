package main

import (
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/tertulia/meeting-server/config"
	"github.com/tertulia/meeting-server/models"
)

// Periodic sweep: expires stale cooperations, finishes past meetings and
// cancels abandoned drafts. Safe to run repeatedly; every update is
// conditional on the current status.
func main() {
	dryRun := flag.Bool("dry-run", false, "report what would change without writing")
	staleDraftDays := flag.Int("stale-draft-days", 90, "cancel drafts untouched for this many days")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment")
	}
	config.ConnectDB()

	now := time.Now()

	expireCooperations(now, *dryRun)
	finishPastMeetings(now, *dryRun)
	cancelStaleDrafts(now, *staleDraftDays, *dryRun)
}

func expireCooperations(now time.Time, dryRun bool) {
	q := config.DB.Model(&models.MeetingCooperation{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?",
			models.CooperationApproved, now)

	if dryRun {
		var n int64
		q.Count(&n)
		log.Printf("dry-run: %d cooperations would expire", n)
		return
	}

	res := q.Update("status", models.CooperationExpired)
	if res.Error != nil {
		log.Printf("expire cooperations: %v", res.Error)
		return
	}
	log.Printf("expired %d cooperations", res.RowsAffected)
}

// finishPastMeetings loads published candidates and checks the computed end
// time in Go, since end = starts_at + duration and the interval arithmetic is
// not portable across drivers.
func finishPastMeetings(now time.Time, dryRun bool) {
	var candidates []models.Meeting
	if err := config.DB.
		Where("status = ? AND starts_at < ?", models.MeetingPublished, now).
		Find(&candidates).Error; err != nil {
		log.Printf("finish meetings: %v", err)
		return
	}

	finished := 0
	for _, m := range candidates {
		if m.EndsAt().After(now) {
			continue
		}
		if dryRun {
			finished++
			continue
		}
		res := config.DB.Model(&models.Meeting{}).
			Where("id = ? AND status = ?", m.ID, models.MeetingPublished).
			Update("status", models.MeetingFinished)
		if res.Error != nil {
			log.Printf("finish meeting %d: %v", m.ID, res.Error)
			continue
		}
		finished += int(res.RowsAffected)
	}

	if dryRun {
		log.Printf("dry-run: %d meetings would finish", finished)
		return
	}
	log.Printf("finished %d meetings", finished)
}

func cancelStaleDrafts(now time.Time, days int, dryRun bool) {
	cutoff := now.AddDate(0, 0, -days)
	q := config.DB.Model(&models.Meeting{}).
		Where("status = ? AND updated_at < ?", models.MeetingDraft, cutoff)

	if dryRun {
		var n int64
		q.Count(&n)
		log.Printf("dry-run: %d stale drafts would cancel", n)
		return
	}

	res := q.Update("status", models.MeetingCancelled)
	if res.Error != nil {
		log.Printf("cancel stale drafts: %v", res.Error)
		return
	}
	log.Printf("cancelled %d stale drafts", res.RowsAffected)
}
