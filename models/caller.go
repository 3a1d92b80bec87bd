package models

// Caller описывает вызывающего пользователя в объёме, необходимом этому
// сервису: проверка ролей принадлежит подсистеме аутентификации, сюда
// попадают только готовые флаги из JWT.
type Caller struct {
	UserID                 int
	IsAdmin                bool
	SingleCampusRestricted bool
}
