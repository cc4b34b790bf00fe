package ui

import (
	"os"
	"strings"

	"golang.org/x/text/language"

	"github.com/ytget/fbgrabber/internal/model"
)

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle          = "app_title"
	KeyFile              = "file"
	KeySettings          = "settings"
	KeyLanguage          = "language"
	KeyEnterURL          = "enter_url"
	KeyFetchFormats      = "fetch_formats"
	KeyBestQuality       = "best_quality"
	KeyQuality           = "quality"
	KeyDownload          = "download"
	KeyCancelAll         = "cancel_all"
	KeyOpenFolder        = "open_folder"
	KeyRetry             = "retry"
	KeyCancel            = "cancel"
	KeyRemove            = "remove"
	KeyOpen              = "open"
	KeyReveal            = "reveal"
	KeyCopyURL           = "copy_url"
	KeyCopyPath          = "copy_path"
	KeyCopied            = "copied"
	KeyLoadingFormats    = "loading_formats"
	KeyFormatsLoaded     = "formats_loaded"
	KeyFormatsFailed     = "formats_failed"
	KeyPleaseEnterURL    = "please_enter_url"
	KeyInvalidURL        = "invalid_url"
	KeyTaskAdded         = "task_added"
	KeyDownloadCompleted = "download_completed"
	KeyDownloadFailed    = "download_failed"
	KeyReadingPlaylist   = "reading_playlist"
	KeyPlaylistAdded     = "playlist_added"
	KeyPlaylistFailed    = "playlist_failed"
	KeyErrorOpeningFile  = "error_opening_file"
	KeyEmptyQueue        = "empty_queue"
	KeyDownloadDirectory = "download_directory"
	KeyMaxParallel       = "max_parallel"
	KeyCookiesFile       = "cookies_file"
	KeyAutoReveal        = "auto_reveal"
	KeyBrowse            = "browse"
	KeyClear             = "clear"
	KeySave              = "save"
	KeySettingsSaved     = "settings_saved"
	KeyStatusQueued      = "status_queued"
	KeyStatusDownloading = "status_downloading"
	KeyStatusProcessing  = "status_processing"
	KeyStatusCompleted   = "status_completed"
	KeyStatusFailed      = "status_failed"
	KeyStatusCanceled    = "status_canceled"
)

var supportedLanguages = []language.Tag{language.English, language.Russian, language.Portuguese}

var languageMatcher = language.NewMatcher(supportedLanguages)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language. "system" picks the closest match
// for the process locale.
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" {
		lang = systemLanguage()
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// systemLanguage maps LC_ALL / LANG (e.g. "ru_RU.UTF-8") to a supported code
func systemLanguage() string {
	locale := os.Getenv("LC_ALL")
	if locale == "" {
		locale = os.Getenv("LANG")
	}
	locale, _, _ = strings.Cut(locale, ".")
	locale = strings.ReplaceAll(locale, "_", "-")
	if locale == "" || locale == "C" || locale == "POSIX" {
		return "en"
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return "en"
	}
	_, idx, _ := languageMatcher.Match(tag)
	base, _ := supportedLanguages[idx].Base()
	return base.String()
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	if texts, exists := l.texts["en"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	return key
}

// StatusText returns the localized label for a queue status
func (l *Localization) StatusText(status model.QueueStatus) string {
	switch status {
	case model.QueueStatusPending:
		return l.GetText(KeyStatusQueued)
	case model.QueueStatusDownloading:
		return l.GetText(KeyStatusDownloading)
	case model.QueueStatusCompleted:
		return l.GetText(KeyStatusCompleted)
	case model.QueueStatusFailed:
		return l.GetText(KeyStatusFailed)
	case model.QueueStatusCanceled:
		return l.GetText(KeyStatusCanceled)
	default:
		return status.DisplayText()
	}
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

func (l *Localization) initializeTexts() {
	l.texts["en"] = map[string]string{
		KeyAppTitle:          "FB Grabber",
		KeyFile:              "File",
		KeySettings:          "Settings",
		KeyLanguage:          "Language",
		KeyEnterURL:          "Paste a video URL (https://www.facebook.com/...)",
		KeyFetchFormats:      "Get formats",
		KeyBestQuality:       "Best available",
		KeyQuality:           "Quality",
		KeyDownload:          "Download",
		KeyCancelAll:         "Cancel all",
		KeyOpenFolder:        "Open folder",
		KeyRetry:             "retry",
		KeyCancel:            "cancel",
		KeyRemove:            "remove",
		KeyOpen:              "play",
		KeyReveal:            "open",
		KeyCopyURL:           "url",
		KeyCopyPath:          "path",
		KeyCopied:            "Copied to clipboard",
		KeyLoadingFormats:    "Loading formats...",
		KeyFormatsLoaded:     "Formats loaded",
		KeyFormatsFailed:     "Could not load formats",
		KeyPleaseEnterURL:    "Please enter a URL",
		KeyInvalidURL:        "Invalid URL",
		KeyTaskAdded:         "Added to queue",
		KeyDownloadCompleted: "Download completed",
		KeyDownloadFailed:    "Download failed",
		KeyReadingPlaylist:   "Reading playlist...",
		KeyPlaylistAdded:     "Videos added from playlist",
		KeyPlaylistFailed:    "Could not read playlist",
		KeyErrorOpeningFile:  "Error opening file",
		KeyEmptyQueue:        "No downloads yet",
		KeyDownloadDirectory: "Download Directory",
		KeyMaxParallel:       "Max Parallel Downloads",
		KeyCookiesFile:       "Cookies File",
		KeyAutoReveal:        "Reveal files when done",
		KeyBrowse:            "Browse",
		KeyClear:             "Clear",
		KeySave:              "Save",
		KeySettingsSaved:     "Settings saved",
		KeyStatusQueued:      "Queued",
		KeyStatusDownloading: "Downloading",
		KeyStatusProcessing:  "Processing",
		KeyStatusCompleted:   "Completed",
		KeyStatusFailed:      "Failed",
		KeyStatusCanceled:    "Canceled",
	}

	l.texts["ru"] = map[string]string{
		KeyAppTitle:          "FB Загрузчик",
		KeyFile:              "Файл",
		KeySettings:          "Настройки",
		KeyLanguage:          "Язык",
		KeyEnterURL:          "Вставьте ссылку на видео (https://www.facebook.com/...)",
		KeyFetchFormats:      "Форматы",
		KeyBestQuality:       "Лучшее доступное",
		KeyQuality:           "Качество",
		KeyDownload:          "Скачать",
		KeyCancelAll:         "Отменить все",
		KeyOpenFolder:        "Открыть папку",
		KeyRetry:             "повтор",
		KeyCancel:            "отмена",
		KeyRemove:            "убрать",
		KeyOpen:              "play",
		KeyReveal:            "открыть",
		KeyCopyURL:           "url",
		KeyCopyPath:          "путь",
		KeyCopied:            "Скопировано в буфер обмена",
		KeyLoadingFormats:    "Загрузка форматов...",
		KeyFormatsLoaded:     "Форматы загружены",
		KeyFormatsFailed:     "Не удалось получить форматы",
		KeyPleaseEnterURL:    "Пожалуйста, введите URL",
		KeyInvalidURL:        "Неверный URL",
		KeyTaskAdded:         "Добавлено в очередь",
		KeyDownloadCompleted: "Загрузка завершена",
		KeyDownloadFailed:    "Ошибка загрузки",
		KeyReadingPlaylist:   "Чтение плейлиста...",
		KeyPlaylistAdded:     "Видео из плейлиста добавлены",
		KeyPlaylistFailed:    "Не удалось прочитать плейлист",
		KeyErrorOpeningFile:  "Ошибка открытия файла",
		KeyEmptyQueue:        "Загрузок пока нет",
		KeyDownloadDirectory: "Папка загрузки",
		KeyMaxParallel:       "Макс. параллельных",
		KeyCookiesFile:       "Файл cookies",
		KeyAutoReveal:        "Показывать файл после загрузки",
		KeyBrowse:            "Обзор",
		KeyClear:             "Очистить",
		KeySave:              "Сохранить",
		KeySettingsSaved:     "Настройки сохранены",
		KeyStatusQueued:      "В очереди",
		KeyStatusDownloading: "Загрузка",
		KeyStatusProcessing:  "Обработка",
		KeyStatusCompleted:   "Готово",
		KeyStatusFailed:      "Ошибка",
		KeyStatusCanceled:    "Отменено",
	}

	l.texts["pt"] = map[string]string{
		KeyAppTitle:          "FB Grabber",
		KeyFile:              "Arquivo",
		KeySettings:          "Configurações",
		KeyLanguage:          "Idioma",
		KeyEnterURL:          "Cole a URL do vídeo (https://www.facebook.com/...)",
		KeyFetchFormats:      "Formatos",
		KeyBestQuality:       "Melhor disponível",
		KeyQuality:           "Qualidade",
		KeyDownload:          "Baixar",
		KeyCancelAll:         "Cancelar todos",
		KeyOpenFolder:        "Abrir pasta",
		KeyRetry:             "repetir",
		KeyCancel:            "cancelar",
		KeyRemove:            "remover",
		KeyOpen:              "play",
		KeyReveal:            "abrir",
		KeyCopyURL:           "url",
		KeyCopyPath:          "caminho",
		KeyCopied:            "Copiado para a área de transferência",
		KeyLoadingFormats:    "Carregando formatos...",
		KeyFormatsLoaded:     "Formatos carregados",
		KeyFormatsFailed:     "Não foi possível obter os formatos",
		KeyPleaseEnterURL:    "Por favor, digite uma URL",
		KeyInvalidURL:        "URL inválida",
		KeyTaskAdded:         "Adicionado à fila",
		KeyDownloadCompleted: "Download concluído",
		KeyDownloadFailed:    "Falha no download",
		KeyReadingPlaylist:   "Lendo playlist...",
		KeyPlaylistAdded:     "Vídeos da playlist adicionados",
		KeyPlaylistFailed:    "Não foi possível ler a playlist",
		KeyErrorOpeningFile:  "Erro ao abrir arquivo",
		KeyEmptyQueue:        "Nenhum download ainda",
		KeyDownloadDirectory: "Diretório de Download",
		KeyMaxParallel:       "Max Downloads Paralelos",
		KeyCookiesFile:       "Arquivo de cookies",
		KeyAutoReveal:        "Mostrar arquivo ao concluir",
		KeyBrowse:            "Navegar",
		KeyClear:             "Limpar",
		KeySave:              "Salvar",
		KeySettingsSaved:     "Configurações salvas",
		KeyStatusQueued:      "Na fila",
		KeyStatusDownloading: "Baixando",
		KeyStatusProcessing:  "Processando",
		KeyStatusCompleted:   "Concluído",
		KeyStatusFailed:      "Falhou",
		KeyStatusCanceled:    "Cancelado",
	}
}
