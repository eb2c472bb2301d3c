package clickhouse

func (s *RepositorySuite) TestInsertBlock() {
	for h := uint64(0); h < 3; h++ {
		s.Require().NoError(s.repo.InsertBlock(s.testCtx, newBlock(h)))
	}

	s.Equal(uint64(3), s.countRows("ghost_blocks"))
	s.Equal(uint64(3), s.countRows("ghost_transactions"))

	stats, err := s.repo.HeightStats(s.testCtx)
	s.Require().NoError(err)
	s.Equal(uint64(3), stats.Count)
	s.Equal(uint64(0), stats.Min)
	s.Equal(uint64(2), stats.Max)
	s.Equal(uint64(3), stats.Sum)
}

func (s *RepositorySuite) TestHeightStatsEmpty() {
	stats, err := s.repo.HeightStats(s.testCtx)
	s.Require().NoError(err)
	s.Equal(uint64(0), stats.Count)
}

func (s *RepositorySuite) TestHeightStatsSeesDuplicateBlocks() {
	s.Require().NoError(s.repo.InsertBlock(s.testCtx, newBlock(0)))
	s.Require().NoError(s.repo.InsertBlock(s.testCtx, newBlock(1)))
	s.Require().NoError(s.repo.InsertBlock(s.testCtx, newBlock(1)))

	stats, err := s.repo.HeightStats(s.testCtx)
	s.Require().NoError(err)
	s.Equal(uint64(3), stats.Count)
	s.Equal(uint64(2), stats.Sum)
}
