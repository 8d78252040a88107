//go:generate mockgen -source=../repositories.go     -destination=./mock_repositories.go     -package=mocks
//go:generate mockgen -source=../caches.go           -destination=./mock_caches.go           -package=mocks
//go:generate mockgen -source=../services.go         -destination=./mock_services.go         -package=mocks
//go:generate mockgen -source=../logger.go           -destination=./mock_logger.go           -package=mocks

package mocks
