package shell

import (
	"os"
	"strings"
)

// Localization manages shell text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Language codes
const (
	LanguageSystem  = "system"
	LanguageEnglish = "en"
	DefaultLanguage = LanguageEnglish
)

// Text keys for localization
const (
	KeyMenuTitle         = "menu_title"
	KeyMenuRun           = "menu_run"
	KeyMenuExit          = "menu_exit"
	KeyMenuPrompt        = "menu_prompt"
	KeyInvalidMenuChoice = "invalid_menu_choice"
	KeyExiting           = "exiting"
	KeyURLPrompt         = "url_prompt"
	KeyURLEmpty          = "url_empty"
	KeyURLReceived       = "url_received"
	KeyFormatsHeader     = "formats_header"
	KeyFormatPrompt      = "format_prompt"
	KeyInvalidFormat     = "invalid_format"
	KeyDownloadingVideo  = "downloading_video"
	KeyDownloadingAudio  = "downloading_audio"
	KeyMerging           = "merging"
	KeyMergeCompleted    = "merge_completed"
	KeySavedTo           = "saved_to"
	KeyNoFormats         = "no_formats"
	KeyNoVideoFormats    = "no_video_formats"
	KeyListError         = "list_error"
	KeyVideoError        = "video_error"
	KeyAudioError        = "audio_error"
	KeyMergeError        = "merge_error"
	KeySourcesKept       = "sources_kept"
	KeyError             = "error"
	KeyStageVideo        = "stage_video"
	KeyStageAudio        = "stage_audio"
	KeyStageMerge        = "stage_merge"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: DefaultLanguage,
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language. "system" reads the locale from
// LC_ALL, LC_MESSAGES and LANG. Unknown languages are ignored.
func (l *Localization) SetLanguage(lang string) {
	if lang == LanguageSystem {
		lang = systemLanguage()
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

	// Fallback to English
	if texts, exists := l.texts[LanguageEnglish]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Final fallback - return key itself
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

// systemLanguage returns the two-letter code of the POSIX locale, e.g.
// "ru" for "ru_RU.UTF-8"
func systemLanguage() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		value := os.Getenv(key)
		if value == "" || value == "C" || value == "POSIX" {
			continue
		}
		if i := strings.IndexAny(value, "_.@"); i >= 0 {
			value = value[:i]
		}
		return strings.ToLower(value)
	}
	return DefaultLanguage
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	// English texts
	l.texts["en"] = map[string]string{
		KeyMenuTitle:         "Menu:",
		KeyMenuRun:           "1. Download Video and Audio, then Merge",
		KeyMenuExit:          "2. Exit",
		KeyMenuPrompt:        "Enter your choice (1/2): ",
		KeyInvalidMenuChoice: "Invalid choice. Please select 1 or 2.",
		KeyExiting:           "Exiting...",
		KeyURLPrompt:         "Enter the video URL: ",
		KeyURLEmpty:          "URL cannot be empty.",
		KeyURLReceived:       "URL received: %s",
		KeyFormatsHeader:     "Available video formats:",
		KeyFormatPrompt:      "Select a format by number: ",
		KeyInvalidFormat:     "Invalid choice. Defaulting to best format.",
		KeyDownloadingVideo:  "Downloading video from URL: %s",
		KeyDownloadingAudio:  "Downloading audio from URL: %s",
		KeyMerging:           "Merging video and audio into %s",
		KeyMergeCompleted:    "Merge completed successfully.",
		KeySavedTo:           "Saved to %s",
		KeyNoFormats:         "No formats available.",
		KeyNoVideoFormats:    "No video formats available.",
		KeyListError:         "An error occurred while listing formats: %v",
		KeyVideoError:        "An error occurred while downloading video: %v",
		KeyAudioError:        "An error occurred while downloading audio: %v",
		KeyMergeError:        "An error occurred while merging: %v",
		KeySourcesKept:       "Downloaded streams kept in %s",
		KeyError:             "Error: %v",
		KeyStageVideo:        "video",
		KeyStageAudio:        "audio",
		KeyStageMerge:        "merge",
	}

	// Russian texts
	l.texts["ru"] = map[string]string{
		KeyMenuTitle:         "Меню:",
		KeyMenuRun:           "1. Скачать видео и аудио, затем объединить",
		KeyMenuExit:          "2. Выход",
		KeyMenuPrompt:        "Введите номер пункта (1/2): ",
		KeyInvalidMenuChoice: "Неверный выбор. Выберите 1 или 2.",
		KeyExiting:           "Выход...",
		KeyURLPrompt:         "Введите URL видео: ",
		KeyURLEmpty:          "URL не может быть пустым.",
		KeyURLReceived:       "Получен URL: %s",
		KeyFormatsHeader:     "Доступные видеоформаты:",
		KeyFormatPrompt:      "Выберите формат по номеру: ",
		KeyInvalidFormat:     "Неверный выбор. Используется лучший формат.",
		KeyDownloadingVideo:  "Загрузка видео: %s",
		KeyDownloadingAudio:  "Загрузка аудио: %s",
		KeyMerging:           "Объединение видео и аудио в %s",
		KeyMergeCompleted:    "Объединение успешно завершено.",
		KeySavedTo:           "Сохранено в %s",
		KeyNoFormats:         "Нет доступных форматов.",
		KeyNoVideoFormats:    "Нет доступных видеоформатов.",
		KeyListError:         "Ошибка при получении списка форматов: %v",
		KeyVideoError:        "Ошибка при загрузке видео: %v",
		KeyAudioError:        "Ошибка при загрузке аудио: %v",
		KeyMergeError:        "Ошибка при объединении: %v",
		KeySourcesKept:       "Загруженные потоки сохранены в %s",
		KeyError:             "Ошибка: %v",
		KeyStageVideo:        "видео",
		KeyStageAudio:        "аудио",
		KeyStageMerge:        "объединение",
	}

	// Portuguese texts
	l.texts["pt"] = map[string]string{
		KeyMenuTitle:         "Menu:",
		KeyMenuRun:           "1. Baixar vídeo e áudio e depois juntar",
		KeyMenuExit:          "2. Sair",
		KeyMenuPrompt:        "Digite sua escolha (1/2): ",
		KeyInvalidMenuChoice: "Escolha inválida. Selecione 1 ou 2.",
		KeyExiting:           "Saindo...",
		KeyURLPrompt:         "Digite a URL do vídeo: ",
		KeyURLEmpty:          "A URL não pode estar vazia.",
		KeyURLReceived:       "URL recebida: %s",
		KeyFormatsHeader:     "Formatos de vídeo disponíveis:",
		KeyFormatPrompt:      "Selecione um formato pelo número: ",
		KeyInvalidFormat:     "Escolha inválida. Usando o melhor formato.",
		KeyDownloadingVideo:  "Baixando vídeo da URL: %s",
		KeyDownloadingAudio:  "Baixando áudio da URL: %s",
		KeyMerging:           "Juntando vídeo e áudio em %s",
		KeyMergeCompleted:    "Junção concluída com sucesso.",
		KeySavedTo:           "Salvo em %s",
		KeyNoFormats:         "Nenhum formato disponível.",
		KeyNoVideoFormats:    "Nenhum formato de vídeo disponível.",
		KeyListError:         "Ocorreu um erro ao listar os formatos: %v",
		KeyVideoError:        "Ocorreu um erro ao baixar o vídeo: %v",
		KeyAudioError:        "Ocorreu um erro ao baixar o áudio: %v",
		KeyMergeError:        "Ocorreu um erro ao juntar: %v",
		KeySourcesKept:       "Fluxos baixados mantidos em %s",
		KeyError:             "Erro: %v",
		KeyStageVideo:        "vídeo",
		KeyStageAudio:        "áudio",
		KeyStageMerge:        "junção",
	}
}
