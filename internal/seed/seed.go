// Package seed installs the default emotion, achievement, and reward
// catalogs. Seeding is idempotent through name-unique upserts, so it is safe
// to run on every startup and across multiple server instances.
package seed

import (
	"fmt"

	"github.com/semillita/semillita/internal/store"
)

type emotionRow struct {
	name  string
	emoji string
	color string
}

type achievementRow struct {
	name           string
	description    string
	icon           string
	pointsRequired int
	condition      string
}

type rewardRow struct {
	name        string
	description string
	category    string
	pointsCost  int
}

var defaultEmotions = []emotionRow{
	{"Feliz", "😊", "#FDE047"},
	{"Triste", "😢", "#60A5FA"},
	{"Enojado", "😠", "#F87171"},
	{"Asustado", "😨", "#C084FC"},
	{"Tranquilo", "😌", "#4ADE80"},
	{"Emocionado", "🤩", "#FB923C"},
}

var defaultAchievements = []achievementRow{
	{"Primera Semilla", "Plantaste tu primera semilla", "🌱", 20, `{"type":"plant_created"}`},
	{"Primer Registro", "Escribiste tu primera entrada", "📝", 10, `{"type":"journal_entries","count":1}`},
	{"7 Días", "Cuidaste tu planta por una semana", "🌿", 70, `{"type":"days_caring","count":7}`},
	{"30 Días", "Cuidaste tu planta por un mes", "🌳", 150, `{"type":"days_caring","count":30}`},
	{"Escritor", "Escribiste 10 entradas en tu diario", "✍️", 100, `{"type":"journal_entries","count":10}`},
	{"Gran Escritor", "Escribiste 30 entradas en tu diario", "📚", 200, `{"type":"journal_entries","count":30}`},
	{"Coleccionista", "Juntaste 500 puntos", "⭐", 50, `{"type":"points","threshold":500}`},
}

var defaultRewards = []rewardRow{
	{"Sticker Dorado", "Un sticker brillante para tu perfil", "decoracion", 50},
	{"Maceta Nueva", "Una maceta decorada para tu planta", "decoracion", 100},
	{"Fondo Especial", "Un fondo de jardín para tu diario", "decoracion", 150},
	{"Avatar Secreto", "Desbloquea un avatar misterioso", "avatar", 250},
	{"Jardín Nocturno", "Tema nocturno para tu jardín", "tema", 400},
}

// Run installs any missing catalog rows. Existing rows are left untouched.
func Run(emotions *store.EmotionStore, achievements *store.AchievementStore, rewards *store.RewardStore) error {
	for _, e := range defaultEmotions {
		if err := emotions.Upsert(e.name, e.emoji, e.color); err != nil {
			return fmt.Errorf("seed emotion %q: %w", e.name, err)
		}
	}
	for _, a := range defaultAchievements {
		if err := achievements.Upsert(a.name, a.description, a.icon, a.pointsRequired, a.condition); err != nil {
			return fmt.Errorf("seed achievement %q: %w", a.name, err)
		}
	}
	for _, r := range defaultRewards {
		if err := rewards.Upsert(r.name, r.description, r.category, r.pointsCost); err != nil {
			return fmt.Errorf("seed reward %q: %w", r.name, err)
		}
	}
	return nil
}
