package ui

import "github.com/ytget/video-downloader/internal/model"

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle           = "app_title"
	KeyEnterSource        = "enter_source"
	KeyStart              = "start"
	KeyBrowseFile         = "browse_file"
	KeyOutputFolder       = "output_folder"
	KeyOpenFolder         = "open_folder"
	KeyReveal             = "reveal"
	KeyFormat             = "format"
	KeyBestFormat         = "best_format"
	KeyIntentDownload     = "intent_download"
	KeyIntentExtractAudio = "intent_extract_audio"
	KeyIntentTranscribe   = "intent_transcribe"
	KeyIntentPlaylist     = "intent_playlist"
	KeyReady              = "ready"
	KeyTaskCompleted      = "task_completed"
	KeyErrorOpeningFolder = "error_opening_folder"
	KeyNoTasks            = "no_tasks"
)

// DefaultLanguage is used when a requested language is unknown
const DefaultLanguage = "en"

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: DefaultLanguage,
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language. Unknown languages are ignored.
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" {
		lang = DefaultLanguage
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	if texts, exists := l.texts[DefaultLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	return key
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
		"pt": "Português",
	}
}

// IntentLabel returns the display name of an intent
func (l *Localization) IntentLabel(intent model.Intent) string {
	switch intent {
	case model.IntentDownload:
		return l.GetText(KeyIntentDownload)
	case model.IntentExtractAudio:
		return l.GetText(KeyIntentExtractAudio)
	case model.IntentTranscribe:
		return l.GetText(KeyIntentTranscribe)
	case model.IntentDownloadPlaylist:
		return l.GetText(KeyIntentPlaylist)
	default:
		return intent.String()
	}
}

func (l *Localization) initializeTexts() {
	l.texts["en"] = map[string]string{
		KeyAppTitle:           "Video Downloader",
		KeyEnterSource:        "Enter a video URL or choose a local file",
		KeyStart:              "Start",
		KeyBrowseFile:         "File...",
		KeyOutputFolder:       "Output folder",
		KeyOpenFolder:         "Open folder",
		KeyReveal:             "open",
		KeyFormat:             "Format",
		KeyBestFormat:         "Best",
		KeyIntentDownload:     "Download video",
		KeyIntentExtractAudio: "Convert to MP3",
		KeyIntentTranscribe:   "Extract text",
		KeyIntentPlaylist:     "Download playlist",
		KeyReady:              "Ready",
		KeyTaskCompleted:      "Task completed",
		KeyErrorOpeningFolder: "Error opening folder",
		KeyNoTasks:            "No tasks yet",
	}

	l.texts["ru"] = map[string]string{
		KeyAppTitle:           "Загрузчик видео",
		KeyEnterSource:        "Введите URL видео или выберите файл",
		KeyStart:              "Старт",
		KeyBrowseFile:         "Файл...",
		KeyOutputFolder:       "Папка сохранения",
		KeyOpenFolder:         "Открыть папку",
		KeyReveal:             "открыть",
		KeyFormat:             "Формат",
		KeyBestFormat:         "Лучший",
		KeyIntentDownload:     "Скачать видео",
		KeyIntentExtractAudio: "Конвертировать в MP3",
		KeyIntentTranscribe:   "Извлечь текст",
		KeyIntentPlaylist:     "Скачать плейлист",
		KeyReady:              "Готово к работе",
		KeyTaskCompleted:      "Задача завершена",
		KeyErrorOpeningFolder: "Ошибка открытия папки",
		KeyNoTasks:            "Задач пока нет",
	}

	l.texts["pt"] = map[string]string{
		KeyAppTitle:           "Video Downloader",
		KeyEnterSource:        "Digite a URL do vídeo ou escolha um arquivo",
		KeyStart:              "Iniciar",
		KeyBrowseFile:         "Arquivo...",
		KeyOutputFolder:       "Pasta de saída",
		KeyOpenFolder:         "Abrir pasta",
		KeyReveal:             "abrir",
		KeyFormat:             "Formato",
		KeyBestFormat:         "Melhor",
		KeyIntentDownload:     "Baixar vídeo",
		KeyIntentExtractAudio: "Converter para MP3",
		KeyIntentTranscribe:   "Extrair texto",
		KeyIntentPlaylist:     "Baixar playlist",
		KeyReady:              "Pronto",
		KeyTaskCompleted:      "Tarefa concluída",
		KeyErrorOpeningFolder: "Erro ao abrir pasta",
		KeyNoTasks:            "Nenhuma tarefa ainda",
	}
}
