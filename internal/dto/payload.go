package dto

import "io"

// FilePart - выбранный пользователем файл, который уйдёт отдельной частью multipart.
type FilePart struct {
	Field    string
	FileName string
	Path     string
	Open     func() (io.ReadCloser, error) `json:"-"`
}

// Payload - тело запроса на изменение под-ресурса.
// Файловые поля попадают в Files только если был выбран новый файл.
type Payload struct {
	Fields map[string]interface{}
	Files  []FilePart
}

func (p Payload) IsMultipart() bool {
	return len(p.Files) > 0
}

// BindFiles подставляет способ открыть каждый файл по его пути в хранилище.
func (p *Payload) BindFiles(open func(path string) (io.ReadCloser, error)) {
	for i := range p.Files {
		path := p.Files[i].Path
		p.Files[i].Open = func() (io.ReadCloser, error) { return open(path) }
	}
}
