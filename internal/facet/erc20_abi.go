package facet

// Minimal ERC-20 surface shared by the game token and the payment token.
const erc20ABIJSON = `[
  {"type":"function","name":"approve","stateMutability":"nonpayable",
   "inputs":[{"name":"spender","type":"address"},
             {"name":"amount","type":"uint256"}],
   "outputs":[{"name":"ok","type":"bool"}]},
  {"type":"function","name":"allowance","stateMutability":"view",
   "inputs":[{"name":"owner","type":"address"},
             {"name":"spender","type":"address"}],
   "outputs":[{"name":"remaining","type":"uint256"}]},
  {"type":"function","name":"balanceOf","stateMutability":"view",
   "inputs":[{"name":"account","type":"address"}],
   "outputs":[{"name":"balance","type":"uint256"}]},
  {"type":"function","name":"decimals","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"","type":"uint8"}]},
  {"type":"function","name":"symbol","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"type":"error","name":"ERC20InsufficientBalance",
   "inputs":[{"name":"sender","type":"address"},
             {"name":"balance","type":"uint256"},
             {"name":"needed","type":"uint256"}]},
  {"type":"error","name":"ERC20InsufficientAllowance",
   "inputs":[{"name":"spender","type":"address"},
             {"name":"allowance","type":"uint256"},
             {"name":"needed","type":"uint256"}]}
]`

// Multicall3-style batch reader used by the aggregators. One eth_call
// covers every view a domain screen needs.
const multicallABIJSON = `[
  {"type":"function","name":"aggregate3","stateMutability":"payable",
   "inputs":[{"name":"calls","type":"tuple[]","components":[
     {"name":"target","type":"address"},
     {"name":"allowFailure","type":"bool"},
     {"name":"callData","type":"bytes"}]}],
   "outputs":[{"name":"returnData","type":"tuple[]","components":[
     {"name":"success","type":"bool"},
     {"name":"returnData","type":"bytes"}]}]}
]`
