package atlassian

import "fmt"

// AuthError возвращается, когда учётные данные отсутствуют или заведомо
// непригодны; проверка выполняется до первого сетевого вызова.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "auth: " + e.Reason
}

// TransientError — временный сбой чтения (таймаут, 429, 5xx). Такие ошибки
// повторяются с экспоненциальной паузой и всплывают только после исчерпания
// попыток.
type TransientError struct {
	StatusCode int
	Err        error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transient: %v", e.Err)
	}
	return fmt.Sprintf("transient: status %d", e.StatusCode)
}

// Unwrap возвращает вложенную ошибку для errors.Is/As.
func (e *TransientError) Unwrap() error {
	return e.Err
}

// PermanentError — окончательный отказ API (4xx, кроме 429); не повторяется.
type PermanentError struct {
	StatusCode int
	Body       string
}

func (e *PermanentError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("api status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("api status %d", e.StatusCode)
}

// ParseError — некорректное тело страницы; фатально для текущей выгрузки.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "parse response: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// FetchError оборачивает сбой посреди пагинации и несёт счётчики уже
// обработанных страниц: страницы, отданные в колбэк до сбоя, остаются у
// вызывающей стороны.
type FetchError struct {
	Pages   int
	Records int
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed after %d page(s), %d record(s): %v", e.Pages, e.Records, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
