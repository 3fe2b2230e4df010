package tenantsettings

import "errors"

var (
	// ErrSettingsNotFound возвращается, когда настройки тенанта не найдены
	ErrSettingsNotFound = errors.New("tenantsettings.repository: settings not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("tenantsettings.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("tenantsettings.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("tenantsettings.repository: failed to scan row")
)
