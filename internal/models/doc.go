// Package models defines the core domain models for Splitr.
//
// # Models
//
//   - Expense: A shared expense with flexible payer and participant sets
//   - Settlement: A single payment instruction between two people
//   - Balance: Net position per person across all expenses
//   - Category: Fixed classification for an expense
//
// People are identified by name strings — there are no user accounts.
// Uniqueness and insertion order of names are owned by the ledger store,
// not by the models.
//
// # Design Principles
//
//  1. **Plain data**: models carry no behavior beyond cheap accessors, so
//     any rendering or transport layer can consume them directly
//  2. **Two independent axes per expense**: who funded it (payers, optional
//     explicit amounts) and who consumed it (participants, always an equal
//     split). The two sets are unrelated by design
//  3. **Avoid aliasing**: mutating code works on clones so stored expenses
//     are never shared with callers
package models
