package mocks

//go:generate mockery --name SnapshotStore --srcpkg github.com/aevon-lab/folio-analytics/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name Listener --srcpkg github.com/aevon-lab/folio-analytics/internal/tracker --output ./tracker --outpkg trackermocks --with-expecter
//go:generate mockery --name Sessions --srcpkg github.com/aevon-lab/folio-analytics/internal/ingestion --output ./ingestion --outpkg ingestionmocks --with-expecter
