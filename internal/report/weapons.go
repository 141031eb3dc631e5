// Package report prints tables derived from loaded game data.
package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/starwake/engine/internal/weapon"
)

// WeaponColumns is the header row of WriteWeapons.
var WeaponColumns = []string{
	"name", "category", "range", "reload", "burst count", "burst reload", "lifetime",
	"shots/second", "energy/shot", "heat/shot", "recoil/shot",
	"energy/s", "heat/s", "recoil/s", "shield/s", "hull/s",
	"homing", "strength", "deterrence",
}

// WeaponRow computes the table row for one outfit. Per second figures use
// 60 ticks per second.
func WeaponRow(o *weapon.Outfit) []string {
	w := o.Weapon
	rate := w.ShotsPerSecond()

	deterrence := 0.0
	if w.Reload > 0 {
		deterrence = .12 * (w.ShieldDamage + w.HullDamage) / w.Reload
	}
	homing := 0
	if w.Homing {
		homing = 1
	}

	return []string{
		o.Name,
		o.Category,
		num(w.Range()),
		num(w.Reload),
		strconv.Itoa(w.BurstCount),
		num(w.BurstReload),
		strconv.Itoa(w.Lifetime),
		num(rate),
		num(w.FiringEnergy),
		num(w.FiringHeat),
		num(w.FiringForce),
		num(w.FiringEnergy * rate),
		num(w.FiringHeat * rate),
		num(w.FiringForce * rate),
		num(w.ShieldDamage * rate),
		num(w.HullDamage * rate),
		strconv.Itoa(homing),
		strconv.Itoa(w.MissileStrength + w.AntiMissile),
		num(deterrence),
	}
}

// WriteWeapons writes a CSV table with one row per weapon outfit. Outfits
// without a weapon are skipped.
func WriteWeapons(out io.Writer, outfits []*weapon.Outfit) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(WeaponColumns); err != nil {
		return err
	}
	for _, o := range outfits {
		if o.Weapon == nil {
			continue
		}
		if err := cw.Write(WeaponRow(o)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
