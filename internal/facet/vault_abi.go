package facet

// Vault facet: deposits, withdrawals, yield claims, flash loans.
const vaultABIJSON = `[
  {"type":"function","name":"deposit","stateMutability":"nonpayable",
   "inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"withdraw","stateMutability":"nonpayable",
   "inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"claimYield","stateMutability":"nonpayable",
   "inputs":[],"outputs":[{"name":"claimed","type":"uint256"}]},
  {"type":"function","name":"flashLoan","stateMutability":"nonpayable",
   "inputs":[{"name":"receiver","type":"address"},
             {"name":"amount","type":"uint256"},
             {"name":"data","type":"bytes"}],"outputs":[]},
  {"type":"error","name":"Vault__AmountZero","inputs":[]},
  {"type":"error","name":"Vault__InsufficientShares",
   "inputs":[{"name":"available","type":"uint256"}]},
  {"type":"error","name":"Vault__CooldownActive",
   "inputs":[{"name":"until","type":"uint64"}]},
  {"type":"error","name":"Vault__FlashLoanNotRepaid",
   "inputs":[{"name":"reason","type":"string"}]},
  {"type":"error","name":"Vault__NothingToClaim","inputs":[]}
]`
