package composition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	s := NewSplitter()
	tests := []struct {
		name string
		blob string
		want []string
	}{
		{name: "empty", blob: "  ", want: nil},
		{name: "sentences", blob: "Разметка мест установки. Установка каркаса. Обшивка листами.",
			want: []string{"Разметка мест установки", "Установка каркаса", "Обшивка листами"}},
		{name: "no terminator", blob: "Очистка поверхности", want: []string{"Очистка поверхности"}},
		{name: "lines and semicolons", blob: "Подача материалов;\nКладка стен\nРасшивка швов",
			want: []string{"Подача материалов", "Кладка стен", "Расшивка швов"}},
		{name: "json items", blob: `[{"text":"Установка каркаса","resource_code":"1-100-20"},{"text":""},{"text":"Обшивка листами"}]`,
			want: []string{"Установка каркаса", "Обшивка листами"}},
		{name: "duplicates", blob: "Грунтовка. Окраска. Грунтовка.", want: []string{"Грунтовка", "Окраска"}},
		{name: "broken json falls back to text", blob: `[не json`, want: []string{"[не json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Split(tt.blob)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
