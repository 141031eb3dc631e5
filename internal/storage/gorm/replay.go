package gormstorage

import (
	"fmt"

	"github.com/starwake/engine/internal/model"
	"github.com/starwake/engine/internal/model/convert"
	"github.com/starwake/engine/internal/storage"
	"github.com/starwake/engine/pkg/core"
	"gorm.io/gorm"
)

// Engagements lists the recorded engagements, oldest first.
func Engagements(db *gorm.DB) ([]core.Engagement, error) {
	var rows []model.Engagement
	if err := db.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list engagements: %w", err)
	}
	out := make([]core.Engagement, len(rows))
	for i := range rows {
		out[i] = convert.EngagementToCore(&rows[i])
	}
	return out, nil
}

// Replay reads a recorded engagement and feeds it, tick by tick, into dst,
// finishing with EndEngagement. It is how a database recording is turned
// into an export file.
func Replay(db *gorm.DB, id uint, dst storage.Backend) error {
	var row model.Engagement
	if err := db.First(&row, id).Error; err != nil {
		return fmt.Errorf("engagement %d: %w", id, err)
	}

	eng := convert.EngagementToCore(&row)
	if err := dst.StartEngagement(&eng); err != nil {
		return err
	}

	var (
		shots    []model.Shot
		specials []model.Special
		jams     []model.Jam
		hits     []model.Hit
		slots    []model.Slot
	)
	scoped := db.Where("engagement_id = ?", id).Order("tick, id").Session(&gorm.Session{})
	for _, dest := range []any{&shots, &specials, &jams, &hits, &slots} {
		if err := scoped.Find(dest).Error; err != nil {
			return fmt.Errorf("engagement %d: %w", id, err)
		}
	}

	for _, s := range slots {
		e := convert.SlotToCore(s)
		if err := dst.RecordSlot(&e); err != nil {
			return err
		}
	}
	for _, s := range shots {
		e := convert.ShotToCore(s)
		if err := dst.RecordShot(&e); err != nil {
			return err
		}
	}
	for _, s := range specials {
		e := convert.SpecialToCore(s)
		if err := dst.RecordSpecial(&e); err != nil {
			return err
		}
	}
	for _, j := range jams {
		e := convert.JamToCore(j)
		if err := dst.RecordJam(&e); err != nil {
			return err
		}
	}
	for _, h := range hits {
		e := convert.HitToCore(h)
		if err := dst.RecordHit(&e); err != nil {
			return err
		}
	}

	return dst.EndEngagement(row.EndTick, convert.SurvivorsToCore(&row))
}
