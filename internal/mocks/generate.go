package mocks

//go:generate mockery --name Source --srcpkg github.com/aevon-lab/cost-rollup/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name SourceSnapshot --srcpkg github.com/aevon-lab/cost-rollup/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name SummaryStore --srcpkg github.com/aevon-lab/cost-rollup/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name Staging --srcpkg github.com/aevon-lab/cost-rollup/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
