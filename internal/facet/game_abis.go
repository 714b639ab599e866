package facet

// Governance facet: share-weighted voting on game proposals.
const governanceABIJSON = `[
  {"type":"function","name":"vote","stateMutability":"nonpayable",
   "inputs":[{"name":"proposalId","type":"uint256"},
             {"name":"support","type":"bool"}],"outputs":[]},
  {"type":"error","name":"Governance__AlreadyVoted",
   "inputs":[{"name":"proposalId","type":"uint256"}]},
  {"type":"error","name":"Governance__NoVotingPower","inputs":[]},
  {"type":"error","name":"Governance__ProposalClosed",
   "inputs":[{"name":"proposalId","type":"uint256"}]}
]`

// Pin facet: one generated pin per player, minted with an off-chain content id.
const pinABIJSON = `[
  {"type":"function","name":"mintPin","stateMutability":"nonpayable",
   "inputs":[{"name":"contentId","type":"string"}],
   "outputs":[{"name":"tokenId","type":"uint256"}]},
  {"type":"error","name":"Pin__AlreadyMinted","inputs":[]},
  {"type":"error","name":"Pin__MintClosed","inputs":[]},
  {"type":"error","name":"Pin__ContentIdEmpty","inputs":[]}
]`

// Flair facet: purchasable equippable items (ERC-1155 semantics). Equipping
// transfers the item into the pool contract's custody.
const flairABIJSON = `[
  {"type":"function","name":"buyFlair","stateMutability":"nonpayable",
   "inputs":[{"name":"typeId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"buyAndEquipFlair","stateMutability":"nonpayable",
   "inputs":[{"name":"typeId","type":"uint256"},
             {"name":"slot","type":"uint8"}],"outputs":[]},
  {"type":"function","name":"equipFlair","stateMutability":"nonpayable",
   "inputs":[{"name":"typeId","type":"uint256"},
             {"name":"slot","type":"uint8"}],"outputs":[]},
  {"type":"function","name":"unequipFlair","stateMutability":"nonpayable",
   "inputs":[{"name":"slot","type":"uint8"}],"outputs":[]},
  {"type":"function","name":"fuseFlair","stateMutability":"nonpayable",
   "inputs":[{"name":"typeA","type":"uint256"},
             {"name":"typeB","type":"uint256"}],
   "outputs":[{"name":"fusedTypeId","type":"uint256"}]},
  {"type":"function","name":"balanceOfBatch","stateMutability":"view",
   "inputs":[{"name":"accounts","type":"address[]"},
             {"name":"ids","type":"uint256[]"}],
   "outputs":[{"name":"balances","type":"uint256[]"}]},
  {"type":"function","name":"isApprovedForAll","stateMutability":"view",
   "inputs":[{"name":"account","type":"address"},
             {"name":"operator","type":"address"}],
   "outputs":[{"name":"approved","type":"bool"}]},
  {"type":"function","name":"setApprovalForAll","stateMutability":"nonpayable",
   "inputs":[{"name":"operator","type":"address"},
             {"name":"approved","type":"bool"}],"outputs":[]},
  {"type":"error","name":"Flair__SoldOut",
   "inputs":[{"name":"typeId","type":"uint256"}]},
  {"type":"error","name":"Flair__SlotOccupied",
   "inputs":[{"name":"slot","type":"uint8"}]},
  {"type":"error","name":"Flair__NotEquipped",
   "inputs":[{"name":"slot","type":"uint8"}]},
  {"type":"error","name":"Flair__PriceMoved",
   "inputs":[{"name":"detail","type":"string"}]},
  {"type":"error","name":"Flair__FuseIncompatible","inputs":[]},
  {"type":"error","name":"Flair__OperatorNotApproved","inputs":[]}
]`

// Data facet: the read-only view surface every aggregator polls.
const dataABIJSON = `[
  {"type":"function","name":"sharesOf","stateMutability":"view",
   "inputs":[{"name":"account","type":"address"}],
   "outputs":[{"name":"shares","type":"uint256"}]},
  {"type":"function","name":"claimableYield","stateMutability":"view",
   "inputs":[{"name":"account","type":"address"}],
   "outputs":[{"name":"amount","type":"uint256"}]},
  {"type":"function","name":"totalDeposits","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"total","type":"uint256"}]},
  {"type":"function","name":"baseFeeRateBps","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"bps","type":"uint16"}]},
  {"type":"function","name":"equippedSlots","stateMutability":"view",
   "inputs":[{"name":"account","type":"address"}],
   "outputs":[{"name":"typeIds","type":"uint256[6]"}]},
  {"type":"function","name":"flairTypeCount","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"count","type":"uint256"}]},
  {"type":"function","name":"flairMeta","stateMutability":"view",
   "inputs":[{"name":"typeId","type":"uint256"}],
   "outputs":[{"name":"name","type":"string"},
              {"name":"priceWei","type":"uint256"},
              {"name":"feeRateBps","type":"uint16"},
              {"name":"supply","type":"uint256"},
              {"name":"maxSupply","type":"uint256"}]},
  {"type":"function","name":"pinOf","stateMutability":"view",
   "inputs":[{"name":"account","type":"address"}],
   "outputs":[{"name":"tokenId","type":"uint256"},
              {"name":"contentId","type":"string"}]}
]`

// Router: the diamond's atomic multi-call entry point. Reverts in any
// sub-call revert the whole transaction.
const routerABIJSON = `[
  {"type":"function","name":"multicall","stateMutability":"nonpayable",
   "inputs":[{"name":"data","type":"bytes[]"}],
   "outputs":[{"name":"results","type":"bytes[]"}]}
]`

// Auction house: standalone Dutch-auction contract selling game tokens.
const auctionABIJSON = `[
  {"type":"function","name":"bid","stateMutability":"nonpayable",
   "inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"currentPrice","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"price","type":"uint256"}]},
  {"type":"function","name":"auctionState","stateMutability":"view",
   "inputs":[],
   "outputs":[{"name":"price","type":"uint256"},
              {"name":"lotRemaining","type":"uint256"},
              {"name":"endsAt","type":"uint64"}]},
  {"type":"error","name":"Auction__BidBelowPrice",
   "inputs":[{"name":"current","type":"uint256"}]},
  {"type":"error","name":"Auction__LotExhausted","inputs":[]},
  {"type":"error","name":"Auction__NotLive","inputs":[]}
]`
