package models

import "time"

// WallpaperMetadata описывает параметры редактирования пользовательских обоев.
// Структура свободная: клиент присылает только те поля, которые менял.
type WallpaperMetadata struct {
	Filters      map[string]float64 `bson:"filters,omitempty" json:"filters,omitempty"`
	TextElements []TextElement      `bson:"text_elements,omitempty" json:"textElements,omitempty"`
	Shapes       []Shape            `bson:"shapes,omitempty" json:"shapes,omitempty"`
}

// TextElement — текстовый слой поверх изображения.
type TextElement struct {
	Text       string  `bson:"text" json:"text"`
	X          float64 `bson:"x" json:"x"`
	Y          float64 `bson:"y" json:"y"`
	FontSize   float64 `bson:"font_size,omitempty" json:"fontSize,omitempty"`
	Color      string  `bson:"color,omitempty" json:"color,omitempty"`
	FontFamily string  `bson:"font_family,omitempty" json:"fontFamily,omitempty"`
}

// Shape — геометрическая фигура поверх изображения.
type Shape struct {
	Type   string  `bson:"type" json:"type"` // rectangle, circle, line
	X      float64 `bson:"x" json:"x"`
	Y      float64 `bson:"y" json:"y"`
	Width  float64 `bson:"width,omitempty" json:"width,omitempty"`
	Height float64 `bson:"height,omitempty" json:"height,omitempty"`
	Color  string  `bson:"color,omitempty" json:"color,omitempty"`
}

// CustomWallpaper — сохранённые пользователем обои (base64-изображение).
type CustomWallpaper struct {
	ID        string             `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"-"`
	ImageData string             `bson:"image_data" json:"imageData"`
	Metadata  *WallpaperMetadata `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// GeneratedWallpaper — обои, сгенерированные по текстовому промпту.
type GeneratedWallpaper struct {
	ID        string            `bson:"_id,omitempty" json:"id"`
	UserID    string            `bson:"user_id" json:"-"`
	Prompt    string            `bson:"prompt" json:"prompt"`
	ImageURL  string            `bson:"image_url" json:"imageUrl"`
	Meta      GenerationDetails `bson:"meta" json:"meta"`
	CreatedAt time.Time         `bson:"created_at" json:"createdAt"`
}

// GenerationDetails — сведения о модели и размере сгенерированного изображения.
type GenerationDetails struct {
	Model       string    `bson:"model" json:"model"`
	GeneratedAt time.Time `bson:"generated_at" json:"generatedAt"`
	Width       int       `bson:"width" json:"width"`
	Height      int       `bson:"height" json:"height"`
}
