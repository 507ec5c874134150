package resourceservice

// MaterializeResponse ответ ResourceService на материализацию слотов
// ShiftIDs - шаблоны, для которых на запрошенную дату существуют
// (или были только что созданы) слоты сотрудников. Пустой список означает,
// что на эту дату ни один сотрудник не работает
type MaterializeResponse struct {
	ShiftIDs []int64 `json:"shiftIds"`
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
