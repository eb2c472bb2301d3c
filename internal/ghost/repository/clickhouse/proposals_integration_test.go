package clickhouse

import "github.com/goodnatureofminers/ghost-indexer/internal/ghost/model"

func (s *RepositorySuite) TestInsertProposalAndIDs() {
	ids, err := s.repo.ProposalIDs(s.testCtx)
	s.Require().NoError(err)
	s.Empty(ids)

	for _, id := range []uint64{43, 42} {
		s.Require().NoError(s.repo.InsertProposal(s.testCtx, model.Proposal{
			ID: id,
			Tally: model.Tally{
				Options:       map[string]model.TallyEntry{"Option 1": {Percentage: 1, Ratio: 100}},
				BlocksCounted: 1,
				HeightStart:   model.TallyStartHeight,
				HeightEnd:     model.TallyEndHeight,
			},
			CreatedHeight:    model.VotingActivationHeight + id,
			CreatedBlockHash: "hash",
		}))
	}

	ids, err = s.repo.ProposalIDs(s.testCtx)
	s.Require().NoError(err)
	s.Equal([]uint64{42, 43}, ids)
}

func (s *RepositorySuite) TestProcessedBlocksWindowRoundTrip() {
	hashes, err := s.repo.ProcessedBlocksWindow(s.testCtx)
	s.Require().NoError(err)
	s.Empty(hashes)

	s.Require().NoError(s.repo.SaveProcessedBlocksWindow(s.testCtx, []string{"a"}))
	s.Require().NoError(s.repo.SaveProcessedBlocksWindow(s.testCtx, []string{"a", "b"}))

	hashes, err = s.repo.ProcessedBlocksWindow(s.testCtx)
	s.Require().NoError(err)
	s.Equal([]string{"a", "b"}, hashes)
}
